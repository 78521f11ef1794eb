// Package intent converts normalized utterances into structured commands.
//
// Matching is ordered substring containment: the first rule whose trigger
// phrases appear in the utterance wins, so declaration order in the rule
// table is part of the contract.
package intent

type Kind string

const (
	Greeting Kind = "greeting"
	Sleep    Kind = "sleep"
	Exit     Kind = "exit"

	SpotifyPlay     Kind = "spotify_play"
	SpotifyPause    Kind = "spotify_pause"
	SpotifyResume   Kind = "spotify_resume"
	SpotifyNext     Kind = "spotify_next"
	SpotifyPrevious Kind = "spotify_previous"
	SpotifyShuffle  Kind = "spotify_shuffle"
	SpotifyRepeat   Kind = "spotify_repeat"
	SpotifyStatus   Kind = "spotify_status"

	MediaPlay       Kind = "media_play"
	VideoPause      Kind = "video_pause"
	VideoResume     Kind = "video_resume"
	VideoNext       Kind = "video_next"
	VideoPrevious   Kind = "video_previous"
	VideoMute       Kind = "video_mute"
	VideoFullscreen Kind = "video_fullscreen"

	CameraPhoto Kind = "camera_photo"
	CameraVideo Kind = "camera_video"
	Screenshot  Kind = "screenshot"

	NetSpeed   Kind = "net_speed"
	Battery    Kind = "battery"
	SystemInfo Kind = "system_info"
	Weather    Kind = "weather"
	Brightness Kind = "brightness"
	Volume     Kind = "volume"
	SayTime    Kind = "say_time"
	SayDate    Kind = "say_date"

	TaskAdd      Kind = "task_add"
	TaskDelete   Kind = "task_delete"
	TaskComplete Kind = "task_complete"
	TaskList     Kind = "task_list"
	TaskSummary  Kind = "task_summary"
	TaskShow     Kind = "task_show"
	TaskClear    Kind = "task_clear"
	TaskSearch   Kind = "task_search"

	FileMove   Kind = "file_move"
	FileCopy   Kind = "file_copy"
	FileDelete Kind = "file_delete"

	WhatsAppOpen Kind = "whatsapp_open"
	WhatsAppSend Kind = "whatsapp_send"

	OpenApp       Kind = "open_app"
	WikiSearch    Kind = "wiki_search"
	GoogleSearch  Kind = "google_search"
	YouTubeSearch Kind = "youtube_search"

	ProcList Kind = "proc_list"
	ProcFind Kind = "proc_find"
	ProcKill Kind = "proc_kill"

	GestureStart Kind = "gesture_start"
	GestureStop  Kind = "gesture_stop"

	Ask Kind = "ask"

	// Malformed means a trigger phrase was present but the parameter
	// template did not match; Clarify carries the re-prompt sentence.
	Malformed Kind = "malformed"
	Unknown   Kind = "unknown"
)

// Intent is the recognized command plus its extracted parameter slots.
// It is ephemeral and never persisted.
type Intent struct {
	Kind    Kind
	Params  map[string]string
	Clarify string
}

// Param returns the named slot, or "" when absent.
func (in Intent) Param(name string) string {
	return in.Params[name]
}
