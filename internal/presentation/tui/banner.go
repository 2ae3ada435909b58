package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the voicelink banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` __   __    _         _ _      _   `, "#34d399"},
		{` \ \ / /__ (_) ___ __| (_)_ _ | |__`, "#2dd4bf"},
		{`  \ V / _ \| |/ __/ _ \ | ' \| / /`, "#22d3ee"},
		{`   \_/\___/|_|\___\___/_|_||_|_\_\`, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
