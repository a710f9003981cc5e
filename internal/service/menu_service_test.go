package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMenuLifecycleIsOwnerScoped(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	menus := NewMenuService(env.menus, qrcode.NewQRService("https://menus.example.com/menus"), nil, zap.NewNop())

	_, err := menus.Create(ctx, 1, models.MenuRequest{Name: " ", Content: "Feijoada"})
	assert.ErrorIs(t, err, ErrEmptyInput)

	menu, err := menus.Create(ctx, 1, models.MenuRequest{Name: "Lunch", Content: "Feijoada"})
	require.NoError(t, err)

	_, err = menus.Get(ctx, 2, menu.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = menus.Update(ctx, 2, menu.ID, models.MenuRequest{Name: "Stolen", Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, menus.Delete(ctx, 2, menu.ID), ErrNotFound)

	updated, err := menus.Update(ctx, 1, menu.ID, models.MenuRequest{Name: "Dinner", Content: "Moqueca"})
	require.NoError(t, err)
	assert.Equal(t, "Dinner", updated.Name)

	list, err := menus.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Moqueca", list[0].Content)

	png, err := menus.QRCode(ctx, 1, menu.ID, 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	_, err = menus.QRCode(ctx, 2, menu.ID, 128)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, menus.Delete(ctx, 1, menu.ID))
	_, err = menus.Get(ctx, 1, menu.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memoryStore) Upload(_ context.Context, key, _ string, r io.Reader) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = b
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func TestOCRExtract(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	svc := NewOCRService(fakeOCR{text: "FEIJOADA 39,90"}, store, zap.NewNop())

	resp, err := svc.Extract(ctx, 7, "Menu.JPG", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "FEIJOADA 39,90", resp.Text)
	assert.True(t, strings.HasPrefix(resp.ImageKey, "menus/7/"))
	assert.True(t, strings.HasSuffix(resp.ImageKey, ".jpg"))
	assert.Equal(t, []byte("jpeg-bytes"), store.objects[resp.ImageKey])

	_, err = svc.Extract(ctx, 7, "empty.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.Extract(ctx, 0, "a.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMenuDeleteRemovesOwnImage(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	store := &memoryStore{objects: map[string][]byte{
		"menus/1/a.jpg": []byte("mine"),
		"menus/2/b.jpg": []byte("theirs"),
	}}
	menus := NewMenuService(env.menus, qrcode.NewQRService("https://menus.example.com/menus"), store, zap.NewNop())

	own, err := menus.Create(ctx, 1, models.MenuRequest{Name: "Lunch", Content: "Feijoada", ImageKey: "menus/1/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "menus/1/a.jpg", own.ImageKey)

	foreign, err := menus.Create(ctx, 1, models.MenuRequest{Name: "Dinner", Content: "Moqueca", ImageKey: "menus/2/b.jpg"})
	require.NoError(t, err)
	assert.Empty(t, foreign.ImageKey)

	require.NoError(t, menus.Delete(ctx, 1, own.ID))
	require.NoError(t, menus.Delete(ctx, 1, foreign.ID))

	assert.NotContains(t, store.objects, "menus/1/a.jpg")
	assert.Contains(t, store.objects, "menus/2/b.jpg")
}

func TestOCRExtractWithoutStorage(t *testing.T) {
	ctx := context.Background()

	resp, err := NewOCRService(fakeOCR{text: "menu"}, nil, zap.NewNop()).Extract(ctx, 1, "a.png", "image/png", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, resp.ImageKey)

	// A failed upload does not block text extraction.
	resp, err = NewOCRService(fakeOCR{text: "menu"}, &memoryStore{err: errors.New("bucket gone")}, zap.NewNop()).
		Extract(ctx, 1, "a.png", "image/png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "menu", resp.Text)
	assert.Empty(t, resp.ImageKey)

	_, err = NewOCRService(fakeOCR{err: errors.New("model overloaded")}, nil, zap.NewNop()).Extract(ctx, 1, "a.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrProvider)
}
