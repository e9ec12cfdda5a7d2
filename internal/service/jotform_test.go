package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const waiverHTML = `<html><head><title>Waiver</title><script src="https://cdn.jotfor.ms/x.js"></script></head>
<body><form id="250123456789" action="https://submit.jotform.com/submit/250123456789">
<input type="hidden" name="formID" value="250123456789">
<ul><li class="form-line" data-type="control_textbox" id="id_3">
<label id="label_3" for="input_3">Nom complet</label>
<input type="text" id="input_3" name="q3_nomComplet" required>
</li></ul>
<button type="submit">Envoyer</button>
</form></body></html>`

type fakeFetcher struct {
	calls int
	body  string
	err   error
}

func (f *fakeFetcher) FetchForm(ctx context.Context, formID string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func TestJotFormFormIsCachedUntilTTL(t *testing.T) {
	fetcher := &fakeFetcher{body: waiverHTML}
	svc := NewJotFormService(nil, nil, fetcher, "250123456789", time.Minute)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	form, err := svc.Form(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "250123456789", form.ID)
	require.NotEmpty(t, form.Fields)
	assert.Equal(t, "3", form.Fields[0].ID)

	_, err = svc.Form(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	now = now.Add(2 * time.Minute)
	_, err = svc.Form(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestJotFormServesStaleFormWhenFetchFails(t *testing.T) {
	fetcher := &fakeFetcher{body: waiverHTML}
	svc := NewJotFormService(nil, nil, fetcher, "250123456789", time.Minute)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Form(context.Background())
	require.NoError(t, err)

	fetcher.err = errors.New("jotform down")
	now = now.Add(time.Hour)
	form, err := svc.Form(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "250123456789", form.ID)

	html, err := svc.FormHTML(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, html, "<script")
}

func TestJotFormWithoutFormID(t *testing.T) {
	svc := NewJotFormService(nil, nil, &fakeFetcher{}, "", 0)
	_, err := svc.Form(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestJotFormSubmitNeedsAnswers(t *testing.T) {
	svc := NewJotFormService(nil, nil, &fakeFetcher{}, "250123456789", 0)
	_, err := svc.Submit(context.Background(), &models.JotFormSubmissionRequest{SessionID: "abc"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
