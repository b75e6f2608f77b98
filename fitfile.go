package ftracker

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tormoder/fit"
)

const (
	secondsPerHour = 3600.0
	// FIT sessions count strides for running and walking; one stride is two steps.
	stepsPerStride = 2
)

// Athlete carries the body measurements FIT sessions do not provide.
type Athlete struct {
	WeightKG float64 `json:"weight_kg" yaml:"weight_kg"`
	HeightCM float64 `json:"height_cm" yaml:"height_cm"`
}

// DecodeFile reads the first session of an activity FIT file as a Sample.
func DecodeFile(path string, athlete Athlete) (Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	return DecodeFIT(f, athlete)
}

// DecodeBytes is DecodeFile for an in-memory FIT file.
func DecodeBytes(data []byte, athlete Athlete) (Sample, error) {
	return DecodeFIT(bytes.NewReader(data), athlete)
}

// DecodeFIT decodes an activity FIT stream and maps its first session to a
// Sample. The sample is validated before it is returned.
func DecodeFIT(r io.Reader, athlete Athlete) (Sample, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return Sample{}, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return Sample{}, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 || activity.Sessions[0] == nil {
		return Sample{}, fmt.Errorf("activity file has no session message")
	}
	session := activity.Sessions[0]

	kind, err := kindFromSport(session.Sport)
	if err != nil {
		return Sample{}, err
	}

	durationH := safePositive(session.GetTotalTimerTimeScaled()) / secondsPerHour
	if durationH == 0 {
		durationH = safePositive(session.GetTotalElapsedTimeScaled()) / secondsPerHour
	}

	var s Sample
	switch kind {
	case KindSwimming:
		strokes, lengths := sumActiveLengths(activity.Lengths)
		action := int(validUint32(session.TotalCycles))
		if action == 0 {
			action = strokes
		}
		laps := int(validUint16(session.NumActiveLengths))
		if laps == 0 {
			laps = lengths
		}
		poolLength := float64(validUint16(session.PoolLength)) / 100.0
		s = NewSwimming(action, durationH, athlete.WeightKG, poolLength, laps)
	default:
		action := int(validUint32(session.TotalCycles)) * stepsPerStride
		if action == 0 {
			distanceM := safePositive(session.GetTotalDistanceScaled())
			action = int(math.Round(distanceM / kind.StepLengthM()))
		}
		if kind == KindWalking {
			s = NewWalking(action, durationH, athlete.WeightKG, athlete.HeightCM)
		} else {
			s = NewRunning(action, durationH, athlete.WeightKG)
		}
	}

	if err := s.Validate(); err != nil {
		return Sample{}, fmt.Errorf("%s session: %w", fmt.Sprint(session.Sport), err)
	}
	return s, nil
}

// AnalyzeFile decodes a FIT activity and computes its report.
func AnalyzeFile(path string, athlete Athlete) (*Report, error) {
	s, err := DecodeFile(path, athlete)
	if err != nil {
		return nil, err
	}
	report := BuildReport(s)
	return &report, nil
}

// ProcessFiles analyzes every FIT file independently. Outcome indices start
// at offset so file outcomes can follow package outcomes in one batch.
func ProcessFiles(paths []string, athlete Athlete, offset int) []Outcome {
	out := make([]Outcome, 0, len(paths))
	for i, path := range paths {
		o := Outcome{Index: offset + i, Path: path}
		s, err := DecodeFile(path, athlete)
		if err != nil {
			o.Err = err
		} else {
			report := BuildReport(s)
			o.Sample = s
			o.Report = &report
		}
		out = append(out, o)
	}
	return out
}

func kindFromSport(sport fit.Sport) (Kind, error) {
	switch sport {
	case fit.SportRunning:
		return KindRunning, nil
	case fit.SportWalking, fit.SportHiking:
		return KindWalking, nil
	case fit.SportSwimming:
		return KindSwimming, nil
	default:
		return 0, fmt.Errorf("%w: unsupported sport %s", ErrUnknownActivityCode, fmt.Sprint(sport))
	}
}

func sumActiveLengths(lengths []*fit.LengthMsg) (strokes, count int) {
	for _, l := range lengths {
		if l == nil || l.LengthType != fit.LengthTypeActive {
			continue
		}
		strokes += int(validUint16(l.TotalStrokes))
		count++
	}
	return strokes, count
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func validUint32(v uint32) uint32 {
	if v == math.MaxUint32 {
		return 0
	}
	return v
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
