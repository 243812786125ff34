// Package main provides a cue plugin that plays a short system sound for
// each game cue. It uses afplay on macOS and paplay elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request is the subset of the cue request this plugin reads.
type Request struct {
	Cue       string `json:"cue"`
	Countdown int    `json:"countdown"`
}

// Response is written back to the executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

var darwinSounds = map[string]string{
	"countdown":   "/System/Library/Sounds/Tink.aiff",
	"win":         "/System/Library/Sounds/Glass.aiff",
	"lose":        "/System/Library/Sounds/Basso.aiff",
	"draw":        "/System/Library/Sounds/Pop.aiff",
	"session_end": "/System/Library/Sounds/Hero.aiff",
}

var freedesktopSounds = map[string]string{
	"countdown":   "/usr/share/sounds/freedesktop/stereo/message.oga",
	"win":         "/usr/share/sounds/freedesktop/stereo/complete.oga",
	"lose":        "/usr/share/sounds/freedesktop/stereo/dialog-error.oga",
	"draw":        "/usr/share/sounds/freedesktop/stereo/bell.oga",
	"session_end": "/usr/share/sounds/freedesktop/stereo/service-login.oga",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	player, sound, err := soundFor(runtime.GOOS, req.Cue)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	if out, err := exec.Command(player, sound).CombinedOutput(); err != nil {
		writeErrorResponse(fmt.Sprintf("%s failed: %v: %s", player, err, out))
		return
	}

	writeSuccessResponse()
}

// soundFor picks the player command and sound file for a cue on goos.
func soundFor(goos, cue string) (string, string, error) {
	sounds, player := freedesktopSounds, "paplay"
	if goos == "darwin" {
		sounds, player = darwinSounds, "afplay"
	}

	sound, ok := sounds[cue]
	if !ok {
		return "", "", fmt.Errorf("unknown cue: %s", cue)
	}
	return player, sound, nil
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
