package main

import (
	"log"
	"os/exec"
)

// notify broadcasts msg to logged-in users with wall. It does not wait for
// delivery and failures only get logged.
func notify(msg string) {
	if msg == "" {
		return
	}
	err := exec.Command("wall", msg).Start()
	if err != nil {
		log.Printf("notify: %v", err)
	}
}
