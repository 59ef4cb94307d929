package service

import (
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptchaDisabledSceneSkipsVerify(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true, Scenes: config.CaptchaSceneConfig{Login: true}})

	assert.NoError(t, svc.Verify(constants.CaptchaSceneRegister, CaptchaVerifyPayload{}))
	assert.ErrorIs(t, svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}), ErrCaptchaRequired)

	disabled := NewCaptchaService(config.CaptchaConfig{Enabled: false, Scenes: config.CaptchaSceneConfig{Login: true}})
	assert.NoError(t, disabled.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}))
	_, err := disabled.GenerateImageChallenge()
	assert.ErrorIs(t, err, ErrCaptchaConfigInvalid)
}

func TestCaptchaImageChallengeVerifiesOnce(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true, Scenes: config.CaptchaSceneConfig{AdminLogin: true}})

	challenge, err := svc.GenerateImageChallenge()
	require.NoError(t, err)
	require.NotEmpty(t, challenge.CaptchaID)
	assert.Contains(t, challenge.ImageBase64, "data:image/png;base64,")

	answer := svc.store.Get(challenge.CaptchaID, false)
	require.NotEmpty(t, answer)
	assert.ErrorIs(t, svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: "wrong"}), ErrCaptchaInvalid)

	second, err := svc.GenerateImageChallenge()
	require.NoError(t, err)
	answer = svc.store.Get(second.CaptchaID, false)
	require.NoError(t, svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: second.CaptchaID, CaptchaCode: answer}))
	assert.ErrorIs(t, svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: second.CaptchaID, CaptchaCode: answer}), ErrCaptchaInvalid)
}

func TestCaptchaPublicSetting(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true, Scenes: config.CaptchaSceneConfig{Register: true}})
	setting := svc.PublicSetting()
	assert.True(t, setting.Enabled)
	assert.True(t, setting.Scenes[constants.CaptchaSceneRegister])
	assert.False(t, setting.Scenes[constants.CaptchaSceneLogin])
}
