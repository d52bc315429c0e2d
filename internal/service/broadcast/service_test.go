package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/bogarovo/internal/metrics"
)

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) RecognizeText(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type sent struct {
	to, body string
}

type fakeSender struct {
	sent    []sent
	failFor map[string]bool
}

func (f *fakeSender) SendText(_ context.Context, to, body string) error {
	f.sent = append(f.sent, sent{to: to, body: body})
	if f.failFor[to] {
		return errors.New("gateway rejected")
	}
	return nil
}

const slip = "Jan Novak 777123456\nNo phone here\n+420 111 222 333 Petr"

func newService(rec *fakeRecognizer, snd *fakeSender, camera, sms bool) *Service {
	return NewService(rec, snd, NewGate(camera, sms), "Objednavka je pripravena.", nil, nil)
}

func TestScan_RequiresCameraPermission(t *testing.T) {
	rec := &fakeRecognizer{text: slip}
	svc := newService(rec, &fakeSender{}, false, true)

	state := svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	assert.Equal(t, StatusCameraRequired, state.Status)
	assert.Zero(t, rec.calls)
	assert.Empty(t, state.Recipients)
}

func TestScan_NoPhoto(t *testing.T) {
	rec := &fakeRecognizer{text: slip}
	svc := newService(rec, &fakeSender{}, true, true)

	state := svc.Scan(context.Background(), nil, "")

	assert.Equal(t, StatusNoPhoto, state.Status)
	assert.Zero(t, rec.calls)
}

func TestScan_LoadsRecipients(t *testing.T) {
	svc := newService(&fakeRecognizer{text: slip}, &fakeSender{}, true, true)

	state := svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	assert.Equal(t, "Loaded 2 contacts.", state.Status)
	require.Len(t, state.Recipients, 2)
	assert.Equal(t, "Jan Novak", state.Recipients[0].Name)
	assert.True(t, state.Recipients[0].Selected)
	assert.Equal(t, "420111222333", state.Recipients[1].Phone)
}

func TestScan_FailureClearsPreviousRecipients(t *testing.T) {
	rec := &fakeRecognizer{text: slip}
	svc := newService(rec, &fakeSender{}, true, true)
	svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	rec.err = errors.New("blurry")
	state := svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	assert.Equal(t, StatusOCRFailed, state.Status)
	assert.Empty(t, state.Recipients)
}

func TestScan_NothingFound(t *testing.T) {
	svc := newService(&fakeRecognizer{text: "Dodaci list\nCelkem 3 ks"}, &fakeSender{}, true, true)

	state := svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	assert.Equal(t, StatusNoRecipients, state.Status)
	assert.Empty(t, state.Recipients)
}

func TestScan_CountsMetrics(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	svc := NewService(&fakeRecognizer{err: errors.New("down")}, &fakeSender{}, NewGate(true, true), "", m, nil)

	svc.Scan(context.Background(), []byte{1}, "image/png")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OCRScans.WithLabelValues(metrics.ResultError)))
}

func TestSend_SelectedRecipientsOnly(t *testing.T) {
	snd := &fakeSender{}
	svc := newService(&fakeRecognizer{text: slip}, snd, true, true)
	svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	_, err := svc.SetSelected(0, false)
	require.NoError(t, err)
	svc.SetMessage("Vyzvednete si vejce.")

	state := svc.Send(context.Background())

	assert.Equal(t, "SMS sent: 1", state.Status)
	require.Len(t, snd.sent, 1)
	assert.Equal(t, sent{to: "420111222333", body: "Vyzvednete si vejce."}, snd.sent[0])
}

func TestSend_FailuresAreFireAndForget(t *testing.T) {
	snd := &fakeSender{failFor: map[string]bool{"777123456": true}}
	svc := newService(&fakeRecognizer{text: slip}, snd, true, true)
	svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	state := svc.Send(context.Background())

	assert.Equal(t, "SMS sent: 2", state.Status)
	assert.Len(t, snd.sent, 2, "one failure does not stop the rest and is not retried")
	assert.Equal(t, "777123456", snd.sent[0].to, "list order is kept")
}

func TestSend_RequiresPermission(t *testing.T) {
	snd := &fakeSender{}
	svc := newService(&fakeRecognizer{text: slip}, snd, true, false)
	svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	state := svc.Send(context.Background())

	assert.Equal(t, StatusSMSRequired, state.Status)
	assert.Empty(t, snd.sent)
}

func TestSend_NothingSelected(t *testing.T) {
	snd := &fakeSender{}
	svc := newService(&fakeRecognizer{}, snd, true, true)

	state := svc.Send(context.Background())

	assert.Equal(t, StatusNothingSelected, state.Status)
	assert.Empty(t, snd.sent)
}

func TestSetSelected_OutOfRange(t *testing.T) {
	svc := newService(&fakeRecognizer{}, &fakeSender{}, true, true)

	_, err := svc.SetSelected(3, true)
	assert.ErrorIs(t, err, ErrRecipientIndex)
}

func TestRequestPermission(t *testing.T) {
	svc := newService(&fakeRecognizer{text: slip}, &fakeSender{}, false, false)

	state := svc.RequestPermission(PermissionCamera, false)
	assert.Equal(t, StatusCameraDenied, state.Status)
	assert.False(t, state.Camera)

	state = svc.RequestPermission(PermissionCamera, true)
	assert.Equal(t, StatusCameraReady, state.Status)
	assert.True(t, state.Camera)

	state = svc.RequestPermission(PermissionSMS, true)
	assert.Equal(t, StatusSMSGranted, state.Status)
	assert.True(t, state.SMS)

	state = svc.Scan(context.Background(), []byte{1}, "image/jpeg")
	assert.Len(t, state.Recipients, 2)
}

func TestState_IsACopy(t *testing.T) {
	svc := newService(&fakeRecognizer{text: slip}, &fakeSender{}, true, true)
	state := svc.Scan(context.Background(), []byte{1}, "image/jpeg")

	state.Recipients[0].Selected = false

	assert.True(t, svc.State().Recipients[0].Selected)
	assert.Equal(t, "Objednavka je pripravena.", svc.State().Message)
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("sms")
	require.NoError(t, err)
	assert.Equal(t, PermissionSMS, p)

	_, err = ParsePermission("location")
	assert.Error(t, err)
}
