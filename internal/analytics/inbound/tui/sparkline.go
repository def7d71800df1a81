package tui

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws ratios in [0, 1] on a fixed scale, so a flat line
// at 0.9 reads higher than one at 0.3.
func RenderSparkline(ratios []float64) string {
	out := make([]rune, len(ratios))
	top := len(sparkBlocks) - 1
	for i, r := range ratios {
		idx := int(r*float64(top) + 0.5)
		out[i] = sparkBlocks[min(max(idx, 0), top)]
	}
	return string(out)
}
