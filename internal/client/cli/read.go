package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/novel-reader/internal/client/api"
	"github.com/spec-kit/novel-reader/internal/client/purchase"
	"github.com/spec-kit/novel-reader/internal/client/reader"
	"github.com/spec-kit/novel-reader/internal/client/views"
)

func (a *app) newReader(cmd *cobra.Command) *reader.Reader {
	tracker := views.NewTracker(a.client, a.cfg.MinViewTime, a.logger)
	ui := &termUI{out: cmd.OutOrStdout(), in: a.in}
	return reader.New(a.client, a.session, tracker, ui, a.logger)
}

func newReadCmd(a *app) *cobra.Command {
	var buy bool
	cmd := &cobra.Command{
		Use:   "read <storyId> <chapterId>",
		Short: "Đọc một chương",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := a.newReader(cmd)
			defer r.Close()

			ch, err := r.Open(ctx, args[0], args[1])
			if err != nil {
				return errors.New(api.Message(err))
			}

			if purchase.AccessOf(ch) == purchase.Locked {
				if !buy {
					fmt.Fprintln(cmd.OutOrStdout(), "Dùng --buy để mua chương này.")
					return nil
				}
				res, err := r.Purchase(ctx)
				if err != nil {
					return err
				}
				if res.Outcome != purchase.OutcomeUnlocked {
					return nil
				}
				if coins, err := r.Balance(ctx); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Số xu còn lại: %d\n", coins)
				}
			}

			_, _ = a.prompt(cmd, "Nhấn Enter để đóng chương ")
			return nil
		},
	}
	cmd.Flags().BoolVar(&buy, "buy", false, "mua chương nếu đang bị khóa")
	return cmd
}

func newStoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "story <storyId>",
		Short: "Ghi nhận lượt xem truyện",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.newReader(cmd)
			r.VisitStory(cmd.Context(), args[0])
			r.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Đã mở truyện", args[0])
			return nil
		},
	}
}

// newRawCmd sends an authorized request and prints the body, for poking at
// the API by hand.
func newRawCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:    "raw <method> <path>",
		Short:  "Gửi yêu cầu có xác thực tới API",
		Args:   cobra.ExactArgs(2),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Load()
			req, err := a.client.NewRequest(cmd.Context(), strings.ToUpper(args[0]), args[1], nil)
			if err != nil {
				return err
			}
			resp, err := a.session.AuthorizedDo(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
			_, err = io.Copy(cmd.OutOrStdout(), resp.Body)
			if err == nil && resp.StatusCode >= http.StatusBadRequest {
				err = fmt.Errorf("request failed: %s", resp.Status)
			}
			return err
		},
	}
}
