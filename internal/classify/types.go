package classify

import "errors"

// ErrNoVideoTrack is returned by Efficiency when the file carries no video track.
var ErrNoVideoTrack = errors.New("no video track")

// UnknownCRF marks a video whose encoder settings carry no parseable crf.
const UnknownCRF = -1

// Kind is the media kind of a candidate file.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindJPEG
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindJPEG:
		return "jpeg"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Efficiency is the three-way answer to "is this already encoded well enough".
type Efficiency int

const (
	EfficiencyNotApplicable Efficiency = iota
	EfficiencyEfficient
	EfficiencyNeedsConversion
)

func (e Efficiency) String() string {
	switch e {
	case EfficiencyEfficient:
		return "efficient"
	case EfficiencyNeedsConversion:
		return "needs-conversion"
	default:
		return "not-applicable"
	}
}

// Classification is the combined verdict for one file.
type Classification struct {
	Path       string
	Kind       Kind
	MIME       string
	Efficiency Efficiency
	CRF        int
	Qualifies  bool
}
