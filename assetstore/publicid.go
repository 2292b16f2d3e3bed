package assetstore

import (
	"regexp"
	"strings"
)

const uploadAnchor = "/upload/"

var (
	versionSegment = regexp.MustCompile(`^v[0-9]+$`)
	sizeSegment    = regexp.MustCompile(`^[0-9]+x[0-9]+$`)
	// key_value tokens; the keys are the asset store's transformation parameter names
	transformToken = regexp.MustCompile(`^(a|ac|af|ar|b|bo|br|c|co|cs|d|dl|dn|dpr|du|e|eo|f|fl|fn|fps|g|h|if|ki|l|o|p|pg|q|r|so|sp|t|u|vc|vs|w|x|y|z)_[^,]+$`)
)

// isTransformSegment reports whether a path segment is an inline transformation
// (e.g. "c_scale,w_500" or "1280x720") rather than part of a public id.
func isTransformSegment(segment string) bool {
	if sizeSegment.MatchString(segment) {
		return true
	}
	for _, token := range strings.Split(segment, ",") {
		if !transformToken.MatchString(token) {
			return false
		}
	}
	return true
}

// ResolvePublicID derives the public id from a delivery URL. The second return
// value is false when the URL has no /upload/ segment, meaning nothing to delete
// or derive.
func ResolvePublicID(url string) (string, bool) {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	i := strings.Index(url, uploadAnchor)
	if i < 0 {
		return "", false
	}
	candidate := strings.Trim(url[i+len(uploadAnchor):], "/")
	if candidate == "" {
		return "", false
	}
	segments := strings.Split(candidate, "/")
	kept := make([]string, 0, len(segments))
	for n, segment := range segments {
		if segment == "" || isTransformSegment(segment) {
			continue
		}
		// Version only counts before the first real path segment, and never as the file name itself
		if len(kept) == 0 && n < len(segments)-1 && versionSegment.MatchString(segment) {
			continue
		}
		kept = append(kept, segment)
	}
	if len(kept) == 0 {
		return "", false
	}
	last := kept[len(kept)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		kept[len(kept)-1] = last[:dot]
	}
	return strings.Join(kept, "/"), true
}
