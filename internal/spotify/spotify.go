// Package spotify controls playback on the user's Spotify account through
// the Web API. Results are spoken sentences; API failures are logged and
// reported as speech, not returned as errors.
package spotify

import (
	"context"
	"fmt"

	log "log/slog"

	api "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials configures account access. RefreshToken comes from a one-time
// authorization of the account; playback endpoints require it.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type Player struct {
	client *api.Client
}

// New builds a Player from creds. Without a refresh token only search
// works, so playback commands will report failure.
func New(ctx context.Context, creds Credentials) *Player {
	if creds.RefreshToken != "" {
		auth := spotifyauth.New(
			spotifyauth.WithClientID(creds.ClientID),
			spotifyauth.WithClientSecret(creds.ClientSecret),
		)
		tok := &oauth2.Token{RefreshToken: creds.RefreshToken}
		return &Player{client: api.New(auth.Client(ctx, tok))}
	}

	conf := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return &Player{client: api.New(conf.Client(ctx))}
}

// PlaySong searches for song and starts playing the first match.
func (p *Player) PlaySong(ctx context.Context, song string) string {
	result, err := p.client.Search(ctx, song, api.SearchTypeTrack, api.Limit(1))
	if err != nil {
		log.Error("Spotify search failed", "song", song, "err", err)
		return "Sorry, I couldn't reach Spotify."
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return fmt.Sprintf("I couldn't find '%s' on Spotify.", song)
	}

	track := result.Tracks.Tracks[0]
	err = p.client.PlayOpt(ctx, &api.PlayOptions{URIs: []api.URI{track.URI}})
	if err != nil {
		log.Error("Spotify play failed", "track", track.Name, "err", err)
		return "I found the song but couldn't start playback. Is Spotify open on a device?"
	}

	artist := ""
	if len(track.Artists) > 0 {
		artist = " by " + track.Artists[0].Name
	}
	return fmt.Sprintf("Playing %s%s on Spotify.", track.Name, artist)
}

func (p *Player) Pause(ctx context.Context) string {
	if err := p.client.Pause(ctx); err != nil {
		log.Error("Spotify pause failed", "err", err)
		return "I couldn't pause Spotify."
	}
	return "Spotify paused."
}

func (p *Player) Resume(ctx context.Context) string {
	if err := p.client.Play(ctx); err != nil {
		log.Error("Spotify resume failed", "err", err)
		return "I couldn't resume Spotify."
	}
	return "Resuming Spotify."
}

func (p *Player) NextTrack(ctx context.Context) string {
	if err := p.client.Next(ctx); err != nil {
		log.Error("Spotify next failed", "err", err)
		return "I couldn't skip the track."
	}
	return "Skipping to the next track."
}

func (p *Player) PreviousTrack(ctx context.Context) string {
	if err := p.client.Previous(ctx); err != nil {
		log.Error("Spotify previous failed", "err", err)
		return "I couldn't go back a track."
	}
	return "Going back to the previous track."
}

func (p *Player) Shuffle(ctx context.Context, on bool) string {
	if err := p.client.Shuffle(ctx, on); err != nil {
		log.Error("Spotify shuffle failed", "on", on, "err", err)
		return "I couldn't change shuffle."
	}
	if on {
		return "Shuffle is on."
	}
	return "Shuffle is off."
}

// Repeat sets the repeat state: "track", "context" or "off".
func (p *Player) Repeat(ctx context.Context, mode string) string {
	if err := p.client.Repeat(ctx, mode); err != nil {
		log.Error("Spotify repeat failed", "mode", mode, "err", err)
		return "I couldn't change repeat."
	}
	return fmt.Sprintf("Repeat set to %s.", mode)
}

func (p *Player) CurrentPlaying(ctx context.Context) string {
	playing, err := p.client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		log.Error("Spotify status failed", "err", err)
		return "I couldn't check what's playing."
	}
	if playing == nil || playing.Item == nil || !playing.Playing {
		return "Nothing is playing on Spotify right now."
	}

	artist := ""
	if len(playing.Item.Artists) > 0 {
		artist = " by " + playing.Item.Artists[0].Name
	}
	return fmt.Sprintf("Currently playing %s%s.", playing.Item.Name, artist)
}
