// Package tag reads and writes ID3v2 metadata on MP3 files.
package tag

import (
	"fmt"

	"github.com/bogem/id3v2"
)

// Info holds the ID3 text frames earhorn reads and writes.
// Zero-value fields mean "not set".
type Info struct {
	Title   string
	Artist  string
	Album   string
	Comment string
}

// Write stores info in the ID3v2 tag of the MP3 at path. Only non-empty
// fields are written; existing frames for other fields are preserved.
// Files without an existing tag get a fresh one.
func Write(path string, info Info) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open %s for tagging: %w", path, err)
	}
	defer tag.Close()

	if info.Title != "" {
		tag.SetTitle(info.Title)
	}
	if info.Artist != "" {
		tag.SetArtist(info.Artist)
	}
	if info.Album != "" {
		tag.SetAlbum(info.Album)
	}
	if info.Comment != "" {
		// Replace rather than accumulate comment frames.
		tag.DeleteFrames(tag.CommonID("Comments"))
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     info.Comment,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags to %s: %w", path, err)
	}
	return nil
}

// Read returns the ID3v2 metadata stored in the MP3 at path. Frames that
// are absent come back as empty strings. A file without any tag yields a
// zero Info and no error.
func Read(path string) (Info, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Info{}, fmt.Errorf("read tags from %s: %w", path, err)
	}
	defer tag.Close()

	info := Info{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
	}

	if frames := tag.GetFrames(tag.CommonID("Comments")); len(frames) > 0 {
		if comment, ok := frames[0].(id3v2.CommentFrame); ok {
			info.Comment = comment.Text
		}
	}

	return info, nil
}
