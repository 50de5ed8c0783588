package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leadrank/leadrank/internal/mockopenai"
)

func main() {
	addr := defaultString("MOCK_OPENAI_ADDR", ":8090")
	apiKey := defaultString("MOCK_OPENAI_API_KEY", "")
	replyFile := defaultString("MOCK_OPENAI_REPLY_FILE", "")

	fs := flag.NewFlagSet("mock-openai", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVar(&apiKey, "api-key", apiKey, "Require 'Authorization: Bearer <key>' on requests; empty disables")
	fs.StringVar(&replyFile, "reply-file", replyFile, "File whose contents are returned as the completion reply")
	_ = fs.Parse(os.Args[1:])

	srv := mockopenai.New()
	srv.RequireAPIKey(apiKey)
	if replyFile != "" {
		b, err := os.ReadFile(replyFile)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read reply file: %v\n", err)
			os.Exit(1)
		}
		srv.SetReply(string(b))
	}

	_, _ = fmt.Fprintf(os.Stdout, "mock-openai listening on %s\n", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}
