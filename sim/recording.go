package sim

import (
	"archive/tar"
	"bytes"
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// Recorder archives one lossless frame per tick plus run statistics into an
// uncompressed tar file. A failed open or write disables recording for the
// rest of the run; the simulation itself carries on.
type Recorder struct {
	file *os.File
	tw   *tar.Writer
	ok   bool
	path string

	flushInterval int
	sinceFlush    int

	stats [][2]string

	start time.Time
}

func recordingFileName(prefix string) string {
	return prefix + time.Now().Format("ants_02-01-2006_15-04-05.tar")
}

// NewRecorder opens the output archive. On failure a degraded recorder is
// returned and a warning logged; every later call becomes a no-op.
func NewRecorder(prefix string, flushInterval int) *Recorder {
	r := &Recorder{
		path:          recordingFileName(prefix),
		flushInterval: flushInterval,
		start:         time.Now(),
		stats:         [][2]string{{"NumAnts", "TimeMs"}},
	}
	file, err := os.Create(r.path)
	if err != nil {
		logrus.Warnf("Failed to create PNG TAR recording in %s: %v", r.path, err)
		return r
	}
	r.file = file
	r.tw = tar.NewWriter(file)
	r.ok = true
	logrus.Infof("Opened output TAR file %s for writing", r.path)
	return r
}

// OK reports whether recording is still active.
func (r *Recorder) OK() bool { return r.ok }

// Path returns the archive path, valid even when recording is degraded.
func (r *Recorder) Path() string { return r.path }

func (r *Recorder) degrade(err error) {
	logrus.Warnf("Recording to %s failed, disabling: %v", r.path, err)
	r.ok = false
}

func (r *Recorder) writeEntry(name string, data []byte) {
	if !r.ok {
		return
	}
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: r.start,
	}
	if err := r.tw.WriteHeader(hdr); err != nil {
		r.degrade(err)
		return
	}
	if _, err := r.tw.Write(data); err != nil {
		r.degrade(err)
	}
}

// WriteFrame encodes the RGB buffer as PNG and archives it under the
// zero-based tick index.
func (r *Recorder) WriteFrame(tick, width, height int, rgb []byte) {
	if !r.ok {
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := 3 * (y*width + x)
			img.SetRGBA(x, y, color.RGBA{R: rgb[p], G: rgb[p+1], B: rgb[p+2], A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		r.degrade(err)
		return
	}
	r.writeEntry(fmt.Sprintf("%d.png", tick), buf.Bytes())

	r.sinceFlush++
	if r.flushInterval > 0 && r.sinceFlush >= r.flushInterval {
		r.sinceFlush = 0
		if err := r.tw.Flush(); err != nil {
			r.degrade(err)
		}
	}
}

// RecordTick appends one row to the ants-versus-time series.
func (r *Recorder) RecordTick(numAnts int, simTime time.Duration) {
	r.stats = append(r.stats, [2]string{
		strconv.Itoa(numAnts),
		strconv.FormatFloat(float64(simTime.Microseconds())/1000.0, 'f', 3, 64),
	})
}

// Finalise writes stats.txt and ants_vs_time.csv and closes the archive.
// Must be called before program exit.
func (r *Recorder) Finalise(numTicks int, wallTime, simTime util.TimeInfo) {
	if !r.ok {
		logrus.Warn("PNG TAR recording not initialised, so not being finalised")
		return
	}

	stats := fmt.Sprintf("========== Statistics ==========\n"+
		"Number of ticks: %d\n"+
		"Wall time: %v\n"+
		"Sim time: %v\n", numTicks, wallTime, simTime)
	r.writeEntry("stats.txt", []byte(stats))

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, row := range r.stats {
		if err := cw.Write(row[:]); err != nil {
			r.degrade(err)
			return
		}
	}
	cw.Flush()
	r.writeEntry("ants_vs_time.csv", buf.Bytes())

	if !r.ok {
		return
	}
	logrus.Infof("Finalising TAR file in %s", r.path)
	if err := r.tw.Close(); err != nil {
		r.degrade(err)
	}
	if err := r.file.Close(); err != nil {
		r.degrade(err)
	}
}
