package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryMethodHasAShape(t *testing.T) {
	for _, m := range Methods {
		_, ok := ResponseShape(m)
		assert.True(t, ok, "method %s", m)
	}
	_, ok := ResponseShape("deleteEverything")
	assert.False(t, ok)
}

func TestMethodValid(t *testing.T) {
	assert.True(t, VerifyKey.Valid())
	assert.False(t, Method("mollom.verifyKey").Valid())
	assert.False(t, Method("").Valid())
	assert.Len(t, MethodNames(), 8)
}

func TestExpectShape(t *testing.T) {
	testCases := []struct {
		name  string
		v     Value
		shape Shape
		ok    bool
	}{
		{"boolean", Bool(false), ShapeBoolean, true},
		{"boolean from string", String("1"), ShapeBoolean, false},
		{"int", Int(3), ShapeInt, true},
		{"int from double", Double(3), ShapeInt, false},
		{"struct", Struct(), ShapeStruct, true},
		{"struct from array", Array(), ShapeStruct, false},
		{"strings", Array(String("a"), String("b")), ShapeStringArray, true},
		{"empty strings", Array(), ShapeStringArray, true},
		{"mixed array", Array(String("a"), Int(1)), ShapeStringArray, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ExpectShape("op", tc.v, tc.shape)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var se *ShapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "op", se.Op)
			assert.Contains(t, err.Error(), "invalid response in op")
		})
	}
}

func TestExpectHelpers(t *testing.T) {
	b, err := ExpectBool("verifyKey", Bool(true))
	require.NoError(t, err)
	assert.True(t, b)

	_, err = ExpectBool("verifyKey", Struct())
	assert.ErrorContains(t, err, "verifyKey")

	n, err := ExpectInt("getStatistics", Int(17))
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	servers, err := ExpectStringArray("getServerList", Array(String("http://a"), String("http://b")))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a", "http://b"}, servers)
}

func contentResult(spam Value) Value {
	return Struct(
		Member{Name: "spam", Value: spam},
		Member{Name: "quality", Value: Double(0.4)},
		Member{Name: "session_id", Value: String("abc123")},
		Member{Name: "reason", Value: String("ignored")},
	)
}

func TestDecodeContentCheck(t *testing.T) {
	testCases := []struct {
		code int64
		want SpamStatus
	}{
		{0, SpamUnknown},
		{1, SpamHam},
		{2, SpamSpam},
		{3, SpamUnsure},
		{9, SpamUnknown},
	}
	for _, tc := range testCases {
		res, err := DecodeContentCheck(contentResult(Int(tc.code)))
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Spam, "code %d", tc.code)
		assert.Equal(t, 0.4, res.Quality)
		assert.Equal(t, "abc123", res.SessionID)
	}

	assert.Equal(t, "spam", SpamSpam.String())
	assert.Equal(t, "unsure", SpamUnsure.String())
}

func TestDecodeContentCheckErrors(t *testing.T) {
	_, err := DecodeContentCheck(Bool(true))
	assert.Error(t, err)

	_, err = DecodeContentCheck(contentResult(String("2")))
	assert.ErrorContains(t, err, "spam")
}

func TestDecodeCaptcha(t *testing.T) {
	v := Struct(
		Member{Name: "session_id", Value: String("s1")},
		Member{Name: "url", Value: String("http://xmlrpc1.mollom.com/a.png?x=1&y=2")},
	)
	c, err := DecodeCaptcha(ImageCaptcha, v)
	require.NoError(t, err)
	assert.Equal(t, "s1", c.SessionID)
	assert.Equal(t, `<img src="http://xmlrpc1.mollom.com/a.png?x=1&amp;y=2" alt="Mollom CAPTCHA" />`, c.HTML())

	audio, err := DecodeCaptcha(AudioCaptcha, v)
	require.NoError(t, err)
	assert.Contains(t, audio.HTML(), `<object type="audio/mpeg"`)

	_, err = DecodeCaptcha(AudioCaptcha, Struct(Member{Name: "session_id", Value: String("s1")}))
	assert.ErrorContains(t, err, "getAudioCaptcha")
}

func TestStatisticsAndFeedbackValidation(t *testing.T) {
	assert.True(t, TodayAccepted.Valid())
	assert.False(t, StatisticsType("forever").Valid())
	assert.True(t, FeedbackLowQuality.Valid())
	assert.False(t, Feedback("rude").Valid())
}
