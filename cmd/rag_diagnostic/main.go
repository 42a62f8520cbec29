package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/pkg/rag"
	ragclient "wiki-chatbot-be/pkg/rag/client"

	"github.com/fatih/color"
)

func main() {
	question := flag.String("q", "", "optional question to send through /chat")
	search := flag.String("search", "", "optional query to send through /api/v1/search")
	limit := flag.Int("limit", 10, "documents to list")
	flag.Parse()

	cfg := config.Load()
	client := ragclient.New(cfg.Rag.BaseURL, cfg.Rag.Timeout)
	ctx := context.Background()
	failed := false

	fmt.Println(strings.Repeat("=", 80))
	color.Cyan("RAG SERVICE DIAGNOSTIC (%s)", cfg.Rag.BaseURL)
	fmt.Println(strings.Repeat("=", 80))

	color.Yellow("\n1. Health check")
	start := time.Now()
	if client.HealthCheck(ctx) {
		color.Green("Healthy (%s)", time.Since(start).Round(time.Millisecond))
	} else {
		color.Red("Unhealthy (%s)", time.Since(start).Round(time.Millisecond))
		failed = true
	}

	color.Yellow("\n2. Documents (first %d)", *limit)
	docs, err := client.ListDocuments(ctx, 0, *limit)
	if err != nil {
		color.Red("Failed: %v", err)
		failed = true
	} else {
		color.Green("%d document(s)", len(docs))
		for _, d := range docs {
			chunks := "?"
			if d.ChunkCount != nil {
				chunks = fmt.Sprint(*d.ChunkCount)
			}
			fmt.Printf("   - %s  %s  status=%s  chunks=%s  created=%s\n", d.Id, d.FileName, d.Status, chunks, d.CreatedAt)
		}
	}

	if *search != "" {
		color.Yellow("\n3. Search %q", *search)
		res, err := client.Search(ctx, rag.SearchRequest{Query: *search})
		if err != nil {
			color.Red("Failed: %v", err)
			failed = true
		} else {
			color.Green("%d result(s) via %s", res.Total, res.SearchType)
			for _, r := range res.Results {
				fmt.Printf("   [%.3f] %s\n", r.Score, preview(r.Content, 100))
			}
		}
	}

	if *question != "" {
		color.Yellow("\n4. Chat %q", *question)
		start := time.Now()
		res, err := client.Chat(ctx, rag.ChatRequest{Question: *question, Verbose: true})
		if err != nil {
			color.Red("Failed: %v", err)
			failed = true
		} else {
			color.Green("Answered in %s", time.Since(start).Round(time.Millisecond))
			fmt.Println(preview(res.Answer, 500))
		}
	}

	fmt.Println()
	if failed {
		color.Red("Diagnostic finished with failures")
		os.Exit(1)
	}
	color.Green("All checks passed")
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
