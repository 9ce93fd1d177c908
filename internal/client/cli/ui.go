package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spec-kit/novel-reader/internal/client/api"
	"github.com/spec-kit/novel-reader/internal/client/purchase"
)

// termUI renders chapters as plain text.
type termUI struct {
	out io.Writer
	in  *bufio.Reader
}

func (u *termUI) ask(label string) (string, error) {
	fmt.Fprint(u.out, label)
	line, err := u.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (u *termUI) Confirm(_ context.Context, ch *api.ChapterResponse, price string) (bool, error) {
	answer, err := u.ask(fmt.Sprintf("Mở khóa \"%s\" với giá %s xu? [y/N] ", ch.Data.Chapter.Title, price))
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "c", "có", "co":
		return true, nil
	}
	return false, nil
}

func (u *termUI) RequireLogin(redirect string) {
	fmt.Fprintf(u.out, "Vui lòng đăng nhập để mua chương (novel-reader login). Sau đó quay lại: %s\n", redirect)
}

func (u *termUI) Notice(msg string) {
	if msg != "" {
		fmt.Fprintln(u.out, msg)
	}
}

func (u *termUI) Render(ch *api.ChapterResponse, state purchase.AccessState) {
	d := ch.Data
	if d.Story != nil {
		fmt.Fprintf(u.out, "%s\n", d.Story.Title)
	}
	fmt.Fprintf(u.out, "Chương %d: %s\n\n", d.Chapter.Number, d.Chapter.Title)

	if state == purchase.Locked {
		if d.Chapter.Preview != "" {
			fmt.Fprintf(u.out, "%s\n\n", d.Chapter.Preview)
		}
		fmt.Fprintf(u.out, "[Chương bị khóa] Giá: %s xu\n", purchase.DisplayPrice(ch))
	} else {
		fmt.Fprintf(u.out, "%s\n", d.Chapter.Content)
	}

	if d.PrevChapter != nil {
		fmt.Fprintf(u.out, "<< Chương %d: %s (%s)\n", d.PrevChapter.Number, d.PrevChapter.Title, d.PrevChapter.ID)
	}
	if d.NextChapter != nil {
		fmt.Fprintf(u.out, ">> Chương %d: %s (%s)\n", d.NextChapter.Number, d.NextChapter.Title, d.NextChapter.ID)
	}
}
