package encoding

import (
	"path/filepath"
	"strings"

	"makeroom/internal/classify"
	"makeroom/internal/config"
)

// OutputPath derives the sibling path a conversion of path writes to.
func OutputPath(video config.Video, path string, kind classify.Kind) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var out string
	switch {
	case kind == classify.KindJPEG:
		out = filepath.Join(dir, stem+".avif")
	case video.OutputMode == config.OutputModeContainer:
		out = filepath.Join(dir, stem+"."+video.Container)
	default:
		out = filepath.Join(dir, stem+video.Suffix+ext)
	}
	if out == path {
		// Replacing the extension would land on the input itself.
		out = filepath.Join(dir, stem+video.Suffix+filepath.Ext(out))
	}
	return out
}

func isMP4Family(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	default:
		return false
	}
}
