package ftracker

// Package is one raw sensor package: a kind code and its ordered values.
type Package struct {
	Code   string    `json:"code" yaml:"code"`
	Values []float64 `json:"values" yaml:"values"`
}

// Outcome is the result of processing one input of a batch. Exactly one of
// Report and Err is set.
type Outcome struct {
	Index   int
	Package Package
	// Path is set when the input was a FIT file.
	Path   string
	Sample Sample
	Report *Report
	Err    error
}

// OK reports whether the input produced a report.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Report != nil
}

// Source names the input for logs and error lines.
func (o Outcome) Source() string {
	if o.Path != "" {
		return o.Path
	}
	if o.Package.Code == "" {
		return "<empty code>"
	}
	return o.Package.Code
}

// SamplePackages returns the demo packages the tracker ships with.
func SamplePackages() []Package {
	return []Package{
		{Code: "SWM", Values: []float64{720, 1, 80, 25, 40}},
		{Code: "RUN", Values: []float64{15000, 1, 75}},
		{Code: "WLK", Values: []float64{9000, 1, 75, 180}},
	}
}

// ProcessBatch dispatches every package independently. A rejected package
// yields an Outcome with Err set and never stops the remaining ones.
func ProcessBatch(pkgs []Package) []Outcome {
	out := make([]Outcome, 0, len(pkgs))
	for i, pkg := range pkgs {
		o := Outcome{Index: i, Package: pkg}
		s, err := ReadPackage(pkg.Code, pkg.Values)
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

// Messages returns the message lines of all successful outcomes, in order.
func Messages(outcomes []Outcome) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Report.Message())
		}
	}
	return out
}

// Failed returns the outcomes that were rejected.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}
