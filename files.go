/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

const sizeUnits = "kMGTPE"

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		sizeUnits[exp])
}

// parseSize reads sizes such as "512", "64kB", "1.5 MB" or "1 MiB".
func parseSize(s string) (int64, error) {
	v, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil || v > math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	return int64(v), nil
}
