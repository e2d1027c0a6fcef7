package studio

import (
	"fmt"

	"shotcraft/internal/domain"
	"shotcraft/pkg/archive"
	"shotcraft/pkg/datauri"
)

// BundleName is the download name of the result archive.
const BundleName = DownloadBaseName + ".zip"

// Bundle packs the current result with the prompt that produced it and the
// source images currently in the session.
func (s *Session) Bundle() ([]byte, error) {
	s.mu.Lock()
	res := s.result
	items := s.images.Items()
	s.mu.Unlock()

	if res == nil {
		return nil, domain.ErrNoResult
	}

	entries := make([]archive.Entry, 0, len(items)+2)
	entries = append(entries,
		archive.Entry{Filename: res.FileName(), Data: res.Data},
		archive.Entry{Filename: "prompt.txt", Data: []byte(res.PromptUsed + "\n")},
	)
	for i, img := range items {
		name := img.Name
		if name == "" {
			name = datauri.Filename("source", img.MIMEType)
		}
		entries = append(entries, archive.Entry{
			Filename: fmt.Sprintf("sources/%02d-%s", i+1, name),
			Data:     img.Data,
		})
	}
	return archive.Zip(entries, res.CreatedAt)
}
