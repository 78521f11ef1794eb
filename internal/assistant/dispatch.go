package assistant

import (
	"context"
	"fmt"
	log "log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"synbi/internal/intent"
	"synbi/internal/tasks"
)

// dispatch routes a resolved intent to the task store or to an actuator.
// No actuator failure escapes: everything is reported as a short spoken
// message and the loop returns to listening.
func (s *Session) dispatch(ctx context.Context, in intent.Intent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Dispatch panicked", "intent", in.Kind, "panic", r)
			s.say("Sorry, something went wrong. Please try again.")
		}
	}()

	switch in.Kind {
	case intent.Greeting:
		s.say("Hello, I am Synbi, your personal assistant.")

	case intent.Malformed:
		s.say(in.Clarify)

	case intent.Unknown:
		s.say("I didn't understand that. Please try again.")

	case intent.TaskAdd, intent.TaskDelete, intent.TaskComplete, intent.TaskList,
		intent.TaskSummary, intent.TaskShow, intent.TaskClear, intent.TaskSearch:
		s.dispatchTask(ctx, in)

	case intent.FileMove, intent.FileCopy, intent.FileDelete:
		s.dispatchFile(ctx, in)

	case intent.SpotifyPlay, intent.SpotifyPause, intent.SpotifyResume,
		intent.SpotifyNext, intent.SpotifyPrevious, intent.SpotifyShuffle,
		intent.SpotifyRepeat, intent.SpotifyStatus:
		s.dispatchSpotify(ctx, in)

	case intent.MediaPlay, intent.VideoPause, intent.VideoResume, intent.VideoNext,
		intent.VideoPrevious, intent.VideoMute, intent.VideoFullscreen:
		s.dispatchMedia(in)

	case intent.CameraPhoto, intent.CameraVideo, intent.Screenshot:
		s.dispatchCamera(in)

	case intent.NetSpeed:
		if s.act.Speed == nil {
			s.say("Speed test is not available.")
			return
		}
		s.say("Checking internet speed, please wait...")
		report, err := s.act.Speed.Measure(ctx)
		if err != nil {
			log.Error("Speed test failed", "err", err)
			s.say("Unable to fetch internet speed right now.")
			return
		}
		s.say(report)

	case intent.Battery:
		if s.act.System == nil {
			s.say("Battery information is not available.")
			return
		}
		s.say(s.act.System.BatteryStatus())

	case intent.SystemInfo:
		if s.act.System == nil {
			s.say("System information is not available.")
			return
		}
		s.say(s.act.System.SystemStatus())

	case intent.Weather:
		s.dispatchWeather(ctx, in)

	case intent.Brightness:
		s.dispatchLevel(ctx, "brightness", func(level int) error {
			return s.act.Desktop.SetBrightness(level)
		})

	case intent.Volume:
		s.dispatchLevel(ctx, "volume", func(level int) error {
			return s.act.Desktop.SetVolume(level)
		})

	case intent.SayTime:
		s.say("The time is " + time.Now().Format("15:04"))

	case intent.SayDate:
		s.say("Date is " + time.Now().Format("2006-01-02"))

	case intent.WhatsAppOpen:
		if s.act.WhatsApp == nil {
			s.say("WhatsApp integration is not available.")
			return
		}
		if s.act.WhatsApp.EnsureOpen() {
			s.say("WhatsApp desktop app is now ready")
		} else {
			s.say("Could not open WhatsApp desktop app")
		}

	case intent.WhatsAppSend:
		s.dispatchWhatsAppSend(ctx)

	case intent.OpenApp:
		if s.act.Desktop == nil {
			s.say("Desktop control is not available.")
			return
		}
		name := in.Param("name")
		if name == "" {
			s.say("Please tell me which application to open.")
			return
		}
		if err := s.act.Desktop.OpenApp(name); err != nil {
			log.Error("Failed to open app", "name", name, "err", err)
			s.say(fmt.Sprintf("Sorry, I couldn't open %s.", name))
			return
		}
		s.say(fmt.Sprintf("Opening %s.", name))

	case intent.WikiSearch:
		s.dispatchWiki(ctx, in)

	case intent.GoogleSearch:
		s.openSearch("https://www.google.com/search?q=", in.Param("query"))

	case intent.YouTubeSearch:
		s.openSearch("https://www.youtube.com/results?search_query=", in.Param("query"))

	case intent.ProcList:
		if s.act.Procs == nil {
			s.say("Process manager is not available.")
			return
		}
		s.say("Getting list of running processes...")
		table, err := s.act.Procs.List(15, "cpu")
		if err != nil {
			log.Error("Process listing failed", "err", err)
			s.say("Sorry, I couldn't get the process list.")
			return
		}
		fmt.Println(table)
		s.say("Here are the top running processes by CPU usage")

	case intent.ProcKill:
		if s.act.Procs == nil {
			s.say("Process manager is not available.")
			return
		}
		name := in.Param("name")
		if name == "" {
			s.say("Please specify which application to close.")
			return
		}
		res, err := s.act.Procs.Kill(name, false)
		if err != nil {
			log.Error("Process kill failed", "name", name, "err", err)
			s.say("Sorry, I couldn't close the application.")
			return
		}
		if len(res.Failures) > 0 {
			log.Warn("Some processes survived the kill", "name", name, "failures", res.Failures)
		}
		s.say(res.Spoken(name))

	case intent.ProcFind:
		if s.act.Procs == nil {
			s.say("Process manager is not available.")
			return
		}
		name := in.Param("name")
		matches, err := s.act.Procs.FindByName(name)
		if err != nil {
			log.Error("Process lookup failed", "name", name, "err", err)
			s.say("Sorry, I couldn't check the running processes.")
			return
		}
		switch len(matches) {
		case 0:
			s.say(fmt.Sprintf("%s is not running.", name))
		case 1:
			s.say(fmt.Sprintf("Yes, %s is running.", name))
		default:
			s.say(fmt.Sprintf("Yes, %s is running with %d processes.", name, len(matches)))
		}

	case intent.GestureStart:
		if s.act.Gesture == nil {
			s.say("Gesture control is not available.")
			return
		}
		s.say("Starting mouse gesture control...")
		if err := s.act.Gesture.Start(); err != nil {
			log.Error("Gesture control start failed", "err", err)
			s.say("Could not start mouse control. Your camera might be in use or not available.")
			return
		}
		s.say("Mouse control is now active. Show your hand to the camera to control the mouse.")

	case intent.GestureStop:
		if s.act.Gesture == nil {
			s.say("Gesture control is not available.")
			return
		}
		s.say("Stopping mouse control...")
		if err := s.act.Gesture.Stop(); err != nil {
			log.Error("Gesture control stop failed", "err", err)
			s.say("Sorry, I couldn't stop mouse control.")
			return
		}
		s.say("Mouse control has been stopped.")

	case intent.Ask:
		s.dispatchAsk(ctx, in)

	default:
		s.say("I didn't understand that. Please try again.")
	}
}

func (s *Session) dispatchTask(ctx context.Context, in intent.Intent) {
	switch in.Kind {
	case intent.TaskAdd:
		text := in.Param("text")
		priority := tasks.ParsePriority(in.Param("priority"))
		if text == "" {
			text = s.followUp(ctx, "What task would you like to add?")
			priority = tasks.PriorityMedium
			if text == "" {
				s.say("No task specified.")
				return
			}
		}
		task, err := s.store.Add(text, priority, "")
		switch {
		case err == nil:
			s.say("Task added successfully: " + task.Text)
		case err == tasks.ErrEmptyText:
			s.say("Error: Task cannot be empty.")
		default:
			log.Error("Failed to save task", "err", err)
			s.say("Error: Could not save task.")
		}

	case intent.TaskDelete:
		identifier := s.taskIdentifier(ctx, in, "Which task would you like to delete? Say the number or task name.", "You have no tasks to delete.")
		if identifier == "" {
			return
		}
		task, err := s.store.Delete(identifier)
		if err != nil {
			s.say(notFoundMessage(identifier))
			return
		}
		s.say("Task deleted: " + task.Text)

	case intent.TaskComplete:
		identifier := s.taskIdentifier(ctx, in, "Which task would you like to complete? Say the number or task name.", "You have no tasks to complete.")
		if identifier == "" {
			return
		}
		task, err := s.store.Complete(identifier)
		if err != nil {
			s.say(notFoundMessage(identifier))
			return
		}
		s.say("Task completed: " + task.Text)

	case intent.TaskList:
		s.say(s.store.SpokenList())

	case intent.TaskSummary:
		s.say(s.store.Summary())

	case intent.TaskShow:
		pending := s.store.Pending()
		if len(pending) == 0 {
			s.say("You have no pending tasks.")
			return
		}
		if s.act.Desktop == nil {
			s.say(s.store.SpokenList())
			return
		}
		lines := make([]string, 0, len(pending))
		for i, t := range pending {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Text))
		}
		if err := s.act.Desktop.Notify("Your Tasks", strings.Join(lines, "\n")); err != nil {
			log.Error("Notification failed", "err", err)
			s.say(s.store.SpokenList())
			return
		}
		s.say("Tasks displayed in notification.")

	case intent.TaskClear:
		n, err := s.store.ClearCompleted()
		if err != nil {
			log.Error("Failed to clear completed tasks", "err", err)
			s.say("Error: Could not save tasks.")
			return
		}
		s.say(fmt.Sprintf("Cleared %d completed task%s.", n, plural(n)))

	case intent.TaskSearch:
		term := in.Param("term")
		if term == "" {
			term = s.followUp(ctx, "What would you like to search for?")
			if term == "" {
				return
			}
		}
		found := s.store.Search(term)
		if len(found) == 0 {
			s.say(fmt.Sprintf("No tasks found containing '%s'.", term))
			return
		}
		parts := make([]string, 0, len(found))
		for i, t := range found {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, t.Text))
		}
		s.say(fmt.Sprintf("Found %d task%s: %s", len(found), plural(len(found)), strings.Join(parts, ". ")))
	}
}

// taskIdentifier resolves the identifier slot, listing the pending tasks
// and asking once when the utterance did not carry one.
func (s *Session) taskIdentifier(ctx context.Context, in intent.Intent, prompt, emptyMsg string) string {
	identifier := in.Param("identifier")
	if identifier != "" {
		return identifier
	}
	if len(s.store.Pending()) == 0 {
		s.say(emptyMsg)
		return ""
	}
	s.say(prompt)
	s.say(s.store.SpokenList())

	s.setState(StateAwaitingParameter)
	defer s.setState(StateListening)
	reply, err := s.capture(ctx)
	if err != nil {
		return ""
	}
	return reply
}

func notFoundMessage(identifier string) string {
	if _, err := strconv.Atoi(strings.TrimSpace(identifier)); err == nil {
		return "Task not found with that ID."
	}
	return "Task not found with that text."
}

func (s *Session) dispatchFile(ctx context.Context, in intent.Intent) {
	if s.act.Files == nil {
		s.say("File management is not available.")
		return
	}

	item := in.Param("item")
	source := in.Param("source")

	switch in.Kind {
	case intent.FileMove:
		dest := in.Param("destination")
		s.say(fmt.Sprintf("Moving %s from %s to %s", item, source, dest))
		s.say(s.act.Files.Move(item, source, dest))

	case intent.FileCopy:
		dest := in.Param("destination")
		s.say(fmt.Sprintf("Copying %s from %s to %s", item, source, dest))
		s.say(s.act.Files.Copy(item, source, dest))

	case intent.FileDelete:
		question := fmt.Sprintf("Are you sure you want to delete '%s' from '%s'? Say 'yes' to confirm or 'no' to cancel.", item, source)
		if !s.confirm(ctx, question) {
			s.say("Delete operation cancelled.")
			return
		}
		s.say(s.act.Files.Delete(item, source))
	}
}

func (s *Session) dispatchSpotify(ctx context.Context, in intent.Intent) {
	if s.act.Spotify == nil {
		s.say("Spotify is not available.")
		return
	}

	switch in.Kind {
	case intent.SpotifyPlay:
		song := in.Param("song")
		if song == "" {
			s.say("Please tell me which song to play on Spotify.")
			return
		}
		s.say(s.act.Spotify.PlaySong(ctx, song))
	case intent.SpotifyPause:
		s.say(s.act.Spotify.Pause(ctx))
	case intent.SpotifyResume:
		s.say(s.act.Spotify.Resume(ctx))
	case intent.SpotifyNext:
		s.say(s.act.Spotify.NextTrack(ctx))
	case intent.SpotifyPrevious:
		s.say(s.act.Spotify.PreviousTrack(ctx))
	case intent.SpotifyShuffle:
		s.say(s.act.Spotify.Shuffle(ctx, in.Param("state") == "on"))
	case intent.SpotifyRepeat:
		s.say(s.act.Spotify.Repeat(ctx, in.Param("mode")))
	case intent.SpotifyStatus:
		s.say(s.act.Spotify.CurrentPlaying(ctx))
	}
}

func (s *Session) dispatchMedia(in intent.Intent) {
	if s.act.Desktop == nil {
		s.say("Media control is not available.")
		return
	}

	tap := func(key, done, manual string) {
		if err := s.act.Desktop.TapKey(key); err != nil {
			log.Error("Media key failed", "key", key, "err", err)
			s.say(manual)
			return
		}
		s.say(done)
	}

	switch in.Kind {
	case intent.MediaPlay:
		query := in.Param("query")
		if query == "" {
			s.say("What would you like me to play on YouTube?")
			return
		}
		s.say("Playing " + query + " on YouTube")
		s.openSearch("https://www.youtube.com/results?search_query=", query)
	case intent.VideoPause:
		tap("space", "Video paused", "Please pause the video manually")
	case intent.VideoResume:
		tap("space", "Video resumed", "Please resume the video manually")
	case intent.VideoNext:
		tap("n", "Skipped to next video", "Please skip to next video manually")
	case intent.VideoPrevious:
		tap("p", "Went to previous video", "Please go to previous video manually")
	case intent.VideoMute:
		tap("m", "Video muted", "Please mute the video manually")
	case intent.VideoFullscreen:
		tap("f", "Video fullscreen toggled", "Please toggle fullscreen manually")
	}
}

func (s *Session) dispatchCamera(in intent.Intent) {
	if s.act.Camera == nil {
		s.say("Camera is not available.")
		return
	}

	switch in.Kind {
	case intent.CameraPhoto:
		s.say(s.act.Camera.CapturePhoto())
	case intent.CameraVideo:
		s.say("Recording video for 5 seconds")
		s.say(s.act.Camera.RecordVideo(5))
	case intent.Screenshot:
		s.say(s.act.Camera.Screenshot())
	}
}

func (s *Session) dispatchWeather(ctx context.Context, in intent.Intent) {
	if s.act.Weather == nil {
		s.say("Weather lookup is not available.")
		return
	}

	city := in.Param("city")
	if city == "" {
		city = s.followUp(ctx, "Which city's weather would you like to know?")
		if city == "" {
			s.say("I didn't get the city name.")
			return
		}
	}

	report, err := s.act.Weather.Current(ctx, city)
	if err != nil {
		log.Error("Weather lookup failed", "city", city, "err", err)
		s.say("Error fetching weather. Please try again.")
		return
	}
	s.say(report)
}

// dispatchLevel asks for a 0-100 number and applies it.
func (s *Session) dispatchLevel(ctx context.Context, what string, apply func(int) error) {
	if s.act.Desktop == nil {
		s.say("System control is not available.")
		return
	}

	reply := s.followUp(ctx, fmt.Sprintf("What level do you want the %s set to? Please give a number from 0 to 100.", what))
	level, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || level < 0 || level > 100 {
		s.say(fmt.Sprintf("Please provide a valid number for %s.", what))
		return
	}

	if err := apply(level); err != nil {
		log.Error("Level change failed", "what", what, "err", err)
		s.say(fmt.Sprintf("Failed to set %s.", what))
		return
	}
	s.say(fmt.Sprintf("%s set to %d%%", capitalize(what), level))
}

func (s *Session) dispatchWhatsAppSend(ctx context.Context) {
	if s.act.WhatsApp == nil {
		s.say("WhatsApp integration is not available.")
		return
	}

	contact := s.followUp(ctx, "Who would you like to send a WhatsApp message to?")
	if contact == "" {
		s.say("I didn't catch the contact name. Please try again.")
		return
	}

	body := s.followUp(ctx, fmt.Sprintf("What message would you like to send to %s?", contact))
	if body == "" {
		s.say("I didn't catch the message. Please try again.")
		return
	}

	if s.act.WhatsApp.Send(contact, body) {
		s.say("Message successfully sent to " + contact)
	} else {
		s.say("I couldn't send the message. Please ensure WhatsApp is installed and try again.")
	}
}

func (s *Session) dispatchWiki(ctx context.Context, in intent.Intent) {
	query := in.Param("query")
	if query == "" {
		return
	}
	if s.act.Wiki == nil {
		s.openSearch("https://en.wikipedia.org/wiki/Special:Search?search=", query)
		return
	}
	summary, err := s.act.Wiki.Summary(ctx, query)
	if err != nil {
		log.Error("Wikipedia lookup failed", "query", query, "err", err)
		s.say("Sorry, I couldn't find any results on Wikipedia.")
		return
	}
	s.say(summary)
}

func (s *Session) dispatchAsk(ctx context.Context, in intent.Intent) {
	if s.act.Chat == nil {
		s.say("I can't answer questions right now.")
		return
	}
	question := in.Param("question")
	if question == "" {
		question = s.followUp(ctx, "What would you like to ask?")
		if question == "" {
			return
		}
	}
	answer, err := s.act.Chat.Ask(ctx, question)
	if err != nil {
		log.Error("Failed to call API", "err", err)
		s.say("Sorry, I couldn't get an answer. Please try again.")
		return
	}
	s.say(answer)
}

func (s *Session) openSearch(base, query string) {
	if query == "" || s.act.Desktop == nil {
		return
	}
	if err := s.act.Desktop.OpenURL(base + url.QueryEscape(query)); err != nil {
		log.Error("Failed to open browser", "err", err)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
