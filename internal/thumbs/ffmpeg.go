package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const extractTimeout = 30 * time.Second

// ffmpegExtractor shells out to ffmpeg for the first decodable frame
type ffmpegExtractor struct {
	bin string
}

// NewFrameExtractor returns an extractor backed by the ffmpeg binary.
func NewFrameExtractor(bin string) FrameExtractor {
	return &ffmpegExtractor{bin: bin}
}

func (e *ffmpegExtractor) ExtractFrame(ctx context.Context, locator string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.bin,
		"-hide_banner", "-loglevel", "error",
		"-i", locator,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "png",
		"pipe:1",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no decodable frame in %s", locator)
	}

	return stdout.Bytes(), nil
}
