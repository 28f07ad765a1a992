// Command-line front end for the photo adjustment pipeline: decode an input
// image, apply a filter and slider adjustments, fold in geometry, and write
// the committed full-resolution result.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/foxnet66/CloudAsset/compositor"
	"github.com/foxnet66/CloudAsset/config"
	"github.com/foxnet66/CloudAsset/filters"
	"github.com/foxnet66/CloudAsset/profiler"
	"github.com/foxnet66/CloudAsset/session"
	"github.com/foxnet66/CloudAsset/thumbnails"
	"github.com/foxnet66/CloudAsset/util"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the source image (jpeg/png/webp)")
		outputPath = flag.String("output", "edited.jpg", "Path for the committed image")
		configPath = flag.String("config", "", "Optional YAML config file")
		filterName = flag.String("filter", "original", "Filter: "+strings.Join(filterNames(), ", "))
		brightness = flag.Float64("brightness", 0, "Brightness, -15 to 15 in 0.5 steps")
		contrast   = flag.Float64("contrast", 0, "Contrast, -15 to 15 in 0.5 steps")
		rotate     = flag.Float64("rotate", 0, "Rotation in degrees")
		scale      = flag.Float64("scale", 1, "Uniform scale factor")
		listThumbs = flag.Bool("thumbs", false, "Report generated thumbnail sizes and exit")
		showStats  = flag.Bool("stats", false, "Print per-stage timing statistics on exit")
	)
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	file, err := util.LoadImageFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *inputPath, err)
	}

	kind, err := filters.ParseKind(*filterName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var prof *profiler.StageTimer
	var opts []session.Option
	if *showStats {
		prof = profiler.NewStageTimer()
		opts = append(opts, session.WithProfiler(prof))
	}

	sess, err := session.New(file.Data, cfg, opts...)
	if err != nil {
		log.Fatalf("Cannot open image: %v", err)
	}
	defer sess.Close()
	if prof != nil {
		defer func() { fmt.Print(prof.Report()) }()
	}

	log.Printf("Opened %s: %dx%d source, %dx%d working copy",
		*inputPath,
		sess.Source().Width(), sess.Source().Height(),
		sess.Working().Width(), sess.Working().Height())

	if *listThumbs {
		reportThumbnails(sess)
		return
	}

	sess.SelectFilter(kind)
	sess.SetBrightness(*brightness, false)
	sess.SetContrast(*contrast, false)
	sess.SetGeometry(compositor.Geometry{
		Scale:    *scale,
		Rotation: *rotate,
	})
	sess.EndInteraction()
	sess.Flush()

	data, err := sess.CommitEncoded()
	if err != nil {
		log.Fatalf("Commit failed: %v", err)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outputPath, err)
	}
	log.Printf("Committed %s (%s, brightness %.1f, contrast %.1f) -> %s (%d bytes)",
		*inputPath, kind, *brightness, *contrast, *outputPath, len(data))
}

func filterNames() []string {
	kinds := filters.Kinds()
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	return names
}

// reportThumbnails drains the filter bank once and prints each cell.
func reportThumbnails(sess *session.Session) {
	done := make(chan struct{})
	remaining := len(filters.Kinds())

	sess.OnThumbnail(func(result thumbnails.Result) {
		if result.Placeholder {
			return
		}
		fmt.Printf("%-12s %dx%d\n", result.Kind, result.Image.Width(), result.Image.Height())
		remaining--
		if remaining == 0 {
			close(done)
		}
	})
	sess.RefreshThumbnails()
	<-done
}
