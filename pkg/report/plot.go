package report

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// minBucketBytes is the lower bound of the first histogram bucket.
const minBucketBytes = 64

// WriteAdditionSizePlot writes an interactive HTML bar chart bucketing the
// raw addition sizes into power-of-two ranges. Sizes feed distribution
// analysis; the chart makes heavy-tailed recordings visible at a glance.
func WriteAdditionSizePlot(w io.Writer, sizes []int) error {
	labels, counts := bucketSizes(sizes)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Mutation addition sizes",
			Subtitle: fmt.Sprintf("%d additions, bucketed by serialized size", len(sizes)),
			Left:     "2%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Size bucket"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Additions"}),
	)
	bar.SetXAxis(labels)

	data := make([]opts.BarData, len(counts))
	for i, n := range counts {
		data[i] = opts.BarData{Value: n}
	}

	bar.AddSeries("additions", data)

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render addition size plot: %w", err)
	}

	return nil
}

// bucketSizes groups sizes into power-of-two buckets starting at 64 bytes.
func bucketSizes(sizes []int) (labels []string, counts []int) {
	maxBucket := 0
	bucketed := make(map[int]int)

	for _, size := range sizes {
		b := bucketIndex(size)
		bucketed[b]++

		if b > maxBucket {
			maxBucket = b
		}
	}

	labels = make([]string, maxBucket+1)
	counts = make([]int, maxBucket+1)

	for i := 0; i <= maxBucket; i++ {
		labels[i] = bucketLabel(i)
		counts[i] = bucketed[i]
	}

	return labels, counts
}

func bucketIndex(size int) int {
	if size < minBucketBytes {
		return 0
	}

	return bits.Len(uint(size)/minBucketBytes) // 64..127 -> 1, 128..255 -> 2, ...
}

func bucketLabel(bucket int) string {
	if bucket == 0 {
		return "< " + humanize.IBytes(minBucketBytes)
	}

	low := uint64(minBucketBytes) << (bucket - 1)

	return humanize.IBytes(low) + " - " + humanize.IBytes(low*2)
}
