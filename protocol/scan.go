package protocol

import (
	"fmt"
	"html"
	"strings"
)

// SpamStatus is the classification returned by checkContent
type SpamStatus int

const (
	SpamUnknown SpamStatus = iota
	SpamHam
	SpamSpam
	SpamUnsure
)

func (s SpamStatus) String() string {
	switch s {
	case SpamUnknown:
		return "unknown"
	case SpamHam:
		return "ham"
	case SpamSpam:
		return "spam"
	case SpamUnsure:
		return "unsure"
	default:
		return fmt.Sprintf("SpamStatus(%d)", int(s))
	}
}

// ContentCheck represents the result of checkContent
type ContentCheck struct {
	// Spam classification
	Spam SpamStatus
	// Quality assessment between 0 and 1
	Quality float64
	// Mollom session id, to be passed to follow-up calls
	SessionID string
}

// DecodeContentCheck reads a checkContent result. Unknown members are ignored.
func DecodeContentCheck(v Value) (*ContentCheck, error) {
	members, err := ExpectStruct(string(CheckContent), v)
	if err != nil {
		return nil, err
	}
	var out ContentCheck
	for _, m := range members {
		switch m.Name {
		case "spam":
			code, ok := m.Value.AsInt()
			if !ok {
				return nil, fmt.Errorf("invalid response in %s: spam is %s", CheckContent, m.Value.Kind())
			}
			if code >= int64(SpamUnknown) && code <= int64(SpamUnsure) {
				out.Spam = SpamStatus(code)
			}
		case "quality":
			// some servers send the quality as an int 0 or 1
			if q, ok := m.Value.AsDouble(); ok {
				out.Quality = q
			} else if q, ok := m.Value.AsInt(); ok {
				out.Quality = float64(q)
			}
		case "session_id":
			out.SessionID, _ = m.Value.AsString()
		}
	}
	return &out, nil
}

// CaptchaKind selects the CAPTCHA media
type CaptchaKind int

const (
	ImageCaptcha CaptchaKind = iota
	AudioCaptcha
)

// Captcha represents the result of getImageCaptcha and getAudioCaptcha
type Captcha struct {
	Kind      CaptchaKind
	SessionID string
	URL       string
}

// DecodeCaptcha reads a captcha result
func DecodeCaptcha(kind CaptchaKind, v Value) (*Captcha, error) {
	op := GetImageCaptcha
	if kind == AudioCaptcha {
		op = GetAudioCaptcha
	}
	members, err := ExpectStruct(string(op), v)
	if err != nil {
		return nil, err
	}
	out := Captcha{Kind: kind}
	for _, m := range members {
		switch m.Name {
		case "session_id":
			out.SessionID, _ = m.Value.AsString()
		case "url":
			out.URL, _ = m.Value.AsString()
		}
	}
	if out.URL == "" {
		return nil, fmt.Errorf("invalid response in %s: no url", op)
	}
	return &out, nil
}

// HTML returns markup embedding the CAPTCHA
func (c *Captcha) HTML() string {
	u := html.EscapeString(c.URL)
	if c.Kind == AudioCaptcha {
		return strings.Join([]string{
			`<object type="audio/mpeg" data="` + u + `" width="50" height="16">`,
			"\t" + `<param name="autoplay" value="false" />`,
			"\t" + `<param name="controller" value="true" />`,
			`</object>`,
		}, "\n")
	}
	return `<img src="` + u + `" alt="Mollom CAPTCHA" />`
}

// StatisticsType selects the counter returned by getStatistics
type StatisticsType string

const (
	TotalDays         StatisticsType = "total_days"
	TotalAccepted     StatisticsType = "total_accepted"
	TotalRejected     StatisticsType = "total_rejected"
	YesterdayAccepted StatisticsType = "yesterday_accepted"
	YesterdayRejected StatisticsType = "yesterday_rejected"
	TodayAccepted     StatisticsType = "today_accepted"
	TodayRejected     StatisticsType = "today_rejected"
)

// StatisticsTypes lists the accepted statistics types
var StatisticsTypes = []StatisticsType{
	TotalDays, TotalAccepted, TotalRejected,
	YesterdayAccepted, YesterdayRejected,
	TodayAccepted, TodayRejected,
}

// Valid reports whether t is a known statistics type
func (t StatisticsType) Valid() bool {
	for _, known := range StatisticsTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Feedback is the moderator verdict sent with sendFeedback
type Feedback string

const (
	FeedbackSpam       Feedback = "spam"
	FeedbackProfanity  Feedback = "profanity"
	FeedbackLowQuality Feedback = "low-quality"
	FeedbackUnwanted   Feedback = "unwanted"
)

// Feedbacks lists the accepted feedback strings
var Feedbacks = []Feedback{FeedbackSpam, FeedbackProfanity, FeedbackLowQuality, FeedbackUnwanted}

// Valid reports whether f is a known feedback string
func (f Feedback) Valid() bool {
	for _, known := range Feedbacks {
		if f == known {
			return true
		}
	}
	return false
}
