// Package debug provides offline frame-buffer inspection helpers.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FrameDumper writes frame buffer snapshots to disk for offline inspection.
type FrameDumper struct {
	outputDir string
	enabled   bool
	maxDumps  int
	dumped    int
}

// NewFrameDumper creates a frame dumper writing into outputDir.
func NewFrameDumper(outputDir string) *FrameDumper {
	return &FrameDumper{
		outputDir: outputDir,
		maxDumps:  10,
	}
}

// Enable activates dumping and ensures the output directory exists.
func (fd *FrameDumper) Enable() {
	fd.enabled = true
	os.MkdirAll(fd.outputDir, 0755)
}

// Disable deactivates dumping.
func (fd *FrameDumper) Disable() {
	fd.enabled = false
}

// SetMaxDumps caps how many frames get written before DumpFrameBuffer
// becomes a no-op.
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// DumpFrameBuffer writes frameBuffer (little-endian ABGR, 256x240) as a
// plain hex grid, one line per scanline.
func (fd *FrameDumper) DumpFrameBuffer(frameBuffer [256 * 240]uint32, frameNum uint64) error {
	if !fd.enabled || fd.dumped >= fd.maxDumps {
		return nil
	}

	filename := fmt.Sprintf("frame_%06d_%s.txt", frameNum, time.Now().Format("150405"))
	path := filepath.Join(fd.outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame dump file: %v", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Frame Buffer Dump (ABGR)\n")
	fmt.Fprintf(file, "Frame Number: %d\n", frameNum)
	fmt.Fprintf(file, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "Dimensions: 256x240\n")
	fmt.Fprintf(file, "===================\n\n")

	for y := 0; y < 240; y++ {
		fmt.Fprintf(file, "Line %03d:", y)
		for x := 0; x < 256; x++ {
			if x%16 == 0 {
				fmt.Fprintf(file, "\n          ")
			}
			fmt.Fprintf(file, "%08X ", frameBuffer[y*256+x])
		}
		fmt.Fprintf(file, "\n")
	}

	fd.dumped++
	return nil
}
