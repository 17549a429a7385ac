package taxonomy

// Detection is one model-reported region with its class index and confidence.
type Detection struct {
	ClassIndex int
	Confidence float64
}

// Resolution is the outcome of classifying a detection sequence.
type Resolution struct {
	Label      string
	Confidence float64
	Advisory   string
}

// Resolve maps a detection sequence to a species label, confidence and
// advisory. The first detection is authoritative; the adapter's ordering is
// preserved and never re-sorted here. Resolve is pure and keeps no state.
func Resolve(detections []Detection) Resolution {
	if len(detections) == 0 {
		return Resolution{
			Label:      LabelUnrecognized,
			Confidence: 0.0,
			Advisory:   AdvisoryNotIdentified,
		}
	}

	best := detections[0]
	label := LabelForIndex(best.ClassIndex)

	return Resolution{
		Label:      label,
		Confidence: best.Confidence,
		Advisory:   AdvisoryFor(label),
	}
}
