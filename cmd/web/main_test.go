package main

import (
	"strings"
	"testing"
)

func TestRenderPage(t *testing.T) {
	page := renderPage("play.example.net", "ws://play.example.net:8081/ws")

	if strings.Contains(page, "{{.") {
		t.Fatalf("unfilled placeholder left in page")
	}
	if !strings.Contains(page, "ssh -t play.example.net -p 2222") {
		t.Fatalf("expected connect command in page")
	}
	if !strings.Contains(page, "ws://play.example.net:8081/ws") {
		t.Fatalf("expected status websocket URL in page")
	}
}
