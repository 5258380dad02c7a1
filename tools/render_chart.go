// render_chart previews the explanation chart for a pair of keyword lists
// using the offline hashing embedder:
//
//	go run ./tools/render_chart.go -resume "python, sql" -job "python programming, java"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"resume-matcher/internal/explain"
	"resume-matcher/pkg/ai"
	"resume-matcher/pkg/infrastructure"
)

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func main() {
	resume := flag.String("resume", "", "comma separated resume keywords")
	job := flag.String("job", "", "comma separated job keywords")
	out := flag.String("out", "chart.html", "HTML output file")
	png := flag.String("png", "", "also rasterise to this PNG file with headless Chrome")
	seed := flag.Int64("seed", 1, "sampling seed")
	flag.Parse()

	resumeKW, jobKW := splitList(*resume), splitList(*job)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	emb := ai.NewHashingEmbedder(ai.DefaultHashingDims)
	resumeEmb, err := emb.Embed(ctx, resumeKW)
	if err != nil {
		fail("embed resume: %v", err)
	}
	jobEmb, err := emb.Embed(ctx, jobKW)
	if err != nil {
		fail("embed job: %v", err)
	}

	var renderer explain.Rasterizer
	if *png != "" {
		renderer = infrastructure.NewChromedpRenderer("", 0)
	}
	ex := explain.New(renderer, explain.Options{Seed: *seed}, nil)
	att := ex.Attribute(resumeEmb, jobKW, jobEmb)
	if att == nil {
		fail("nothing to explain: need at least two job keywords and one resume keyword")
	}

	if err := os.WriteFile(*out, []byte(att.HTML()), 0o644); err != nil {
		fail("write html: %v", err)
	}
	summary, _ := json.MarshalIndent(att, "", "  ")
	fmt.Println(string(summary))

	if *png != "" {
		img, err := renderer.RenderPNG(ctx, att.HTML(), att.ChartWidth(), att.ChartHeight())
		if err != nil {
			fail("render png: %v", err)
		}
		if err := os.WriteFile(*png, img, 0o644); err != nil {
			fail("write png: %v", err)
		}
	}
}
