package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mollom/mollomclient-go/client"
	"github.com/mollom/mollomclient-go/protocol"
)

var contentReq client.ContentRequest

var verifyKeyCmd = &cobra.Command{
	Use:   "verify-key",
	Short: "Check that the configured keys are enabled",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, c *client.Client, _ []string) error {
		ok, err := c.VerifyKey(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	}),
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Fetch and print the server list",
	Args:  cobra.NoArgs,
	RunE: runClient(false, func(ctx context.Context, c *client.Client, _ []string) error {
		servers, err := c.Bootstrap(ctx)
		if err != nil {
			return err
		}
		for _, s := range servers {
			fmt.Println(s)
		}
		return nil
	}),
}

var checkContentCmd = &cobra.Command{
	Use:   "check-content",
	Short: "Classify a post",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, c *client.Client, _ []string) error {
		res, err := c.CheckContent(ctx, contentReq)
		if err != nil {
			return err
		}
		fmt.Printf("spam:       %s\n", res.Spam)
		fmt.Printf("quality:    %.2f\n", res.Quality)
		fmt.Printf("session_id: %s\n", res.SessionID)
		return nil
	}),
}

var captchaHTML bool

var captchaCmd = &cobra.Command{
	Use:       "captcha image|audio",
	Short:     "Request a CAPTCHA",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"image", "audio"},
	RunE: run(func(ctx context.Context, c *client.Client, args []string) error {
		var (
			captcha *protocol.Captcha
			err     error
		)
		if args[0] == "audio" {
			captcha, err = c.GetAudioCaptcha(ctx, contentReq.SessionID, contentReq.AuthorIP)
		} else {
			captcha, err = c.GetImageCaptcha(ctx, contentReq.SessionID, contentReq.AuthorIP)
		}
		if err != nil {
			return err
		}
		if captchaHTML {
			fmt.Println(captcha.HTML())
			return nil
		}
		fmt.Printf("url:        %s\n", captcha.URL)
		fmt.Printf("session_id: %s\n", captcha.SessionID)
		return nil
	}),
}

var checkCaptchaCmd = &cobra.Command{
	Use:   "check-captcha SESSION_ID SOLUTION",
	Short: "Validate a CAPTCHA answer",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, c *client.Client, args []string) error {
		ok, err := c.CheckCaptcha(ctx, args[0], args[1], contentReq.AuthorIP)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats TYPE",
	Short: "Print a usage counter",
	Long:  "Print a usage counter. TYPE is one of " + statisticsTypeList() + ".",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, c *client.Client, args []string) error {
		n, err := c.GetStatistics(ctx, protocol.StatisticsType(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}),
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback SESSION_ID spam|profanity|low-quality|unwanted",
	Short: "Report a moderator verdict",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, c *client.Client, args []string) error {
		ok, err := c.SendFeedback(ctx, args[0], protocol.Feedback(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	}),
}

func statisticsTypeList() string {
	names := make([]string, len(protocol.StatisticsTypes))
	for i, t := range protocol.StatisticsTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func init() {
	f := checkContentCmd.Flags()
	f.StringVar(&contentReq.SessionID, "session-id", "", "Mollom session id from a previous call")
	f.StringVar(&contentReq.PostTitle, "title", "", "post title")
	f.StringVar(&contentReq.PostBody, "body", "", "post body")
	f.StringVar(&contentReq.AuthorName, "author-name", "", "author name")
	f.StringVar(&contentReq.AuthorURL, "author-url", "", "author homepage")
	f.StringVar(&contentReq.AuthorEmail, "author-email", "", "author e-mail")
	f.StringVar(&contentReq.AuthorOpenID, "author-openid", "", "author OpenID")
	f.StringVar(&contentReq.AuthorID, "author-id", "", "author id on the site")
	f.StringVar(&contentReq.AuthorIP, "author-ip", "", "author IP address")

	captchaCmd.Flags().StringVar(&contentReq.SessionID, "session-id", "", "Mollom session id from a previous call")
	captchaCmd.Flags().StringVar(&contentReq.AuthorIP, "author-ip", "", "author IP address")
	captchaCmd.Flags().BoolVar(&captchaHTML, "html", false, "print embeddable markup")

	checkCaptchaCmd.Flags().StringVar(&contentReq.AuthorIP, "author-ip", "", "author IP address")

	rootCmd.AddCommand(verifyKeyCmd, serversCmd, checkContentCmd, captchaCmd, checkCaptchaCmd, statsCmd, feedbackCmd)
}
