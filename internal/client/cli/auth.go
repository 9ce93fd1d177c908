package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/novel-reader/internal/client/api"
	"github.com/spec-kit/novel-reader/internal/client/session"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Đăng nhập và lưu phiên",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := ""
			if len(args) == 1 {
				username = args[0]
			} else {
				var err error
				if username, err = a.prompt(cmd, "Tên đăng nhập: "); err != nil {
					return err
				}
			}
			password, err := a.promptPassword(cmd, "Mật khẩu: ")
			if err != nil {
				return err
			}
			if err := a.session.Login(cmd.Context(), username, password); err != nil {
				return errors.New(api.Message(err))
			}
			return printUser(cmd, a.session, "Đăng nhập thành công")
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Tạo tài khoản mới",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, err := a.prompt(cmd, "Tên đăng nhập: ")
			if err != nil {
				return err
			}
			email, err := a.prompt(cmd, "Email: ")
			if err != nil {
				return err
			}
			password, err := a.promptPassword(cmd, "Mật khẩu: ")
			if err != nil {
				return err
			}
			if err := a.session.Register(cmd.Context(), username, email, password); err != nil {
				return errors.New(api.Message(err))
			}
			return printUser(cmd, a.session, "Đăng ký thành công")
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Xóa phiên đăng nhập trên máy này",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Đã đăng xuất")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Hiển thị tài khoản đang đăng nhập",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.session.Restore(cmd.Context()) == session.NoSession {
				fmt.Fprintln(cmd.OutOrStdout(), "Chưa đăng nhập")
				return nil
			}
			return printUser(cmd, a.session, "Đang đăng nhập")
		},
	}
}

func printUser(cmd *cobra.Command, sess *session.Manager, prefix string) error {
	user, ok := sess.CurrentUser()
	if !ok {
		return session.ErrNoSession
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s, %d xu)\n", prefix, user.Username, user.Role, user.Coins)
	return nil
}
