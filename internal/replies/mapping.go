package replies

import "github.com/JaimeStill/clerk/pkg/repository"

const columns = "id, letter_id, style, text, selected, fallback, generated_at"

func scanReply(s repository.Scanner) (Reply, error) {
	var r Reply
	err := s.Scan(&r.ID, &r.LetterID, &r.Style, &r.Text, &r.Selected, &r.Fallback, &r.GeneratedAt)
	if err == nil {
		r.StyleLabel = r.Style.Label()
	}
	return r, err
}
