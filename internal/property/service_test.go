package property

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/displayname"
	"github.com/misionesarrienda/api/internal/media"
	"github.com/misionesarrienda/api/internal/storage"
	"github.com/misionesarrienda/api/internal/upload"
)

const imageBase = "https://abc.supabase.co/storage/v1/object/public/property-images"

var _ storage.Storage = (*fakeStore)(nil)

type fakeStore struct {
	resolver    *media.Resolver
	keys        map[string][]string
	listErr     error
	uploadErr   error
	uploaded    []string
	deleted     []string
	invalidated []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{resolver: media.NewResolver(imageBase), keys: map[string][]string{}}
}

func (f *fakeStore) List(_ context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.keys[prefix], nil
}

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	f.uploaded = append(f.uploaded, key)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	u, _ := f.resolver.Resolve(key)
	return u
}

func (f *fakeStore) Invalidate(_ context.Context, prefix string) {
	f.invalidated = append(f.invalidated, prefix)
}

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface, *fakeStore) {
	t.Helper()
	repo, mock := setupRepo(t)
	store := newFakeStore()
	gallery := storage.NewGallery(store, store.resolver, zap.NewNop())
	return NewService(repo, store, gallery, displayname.AvatarPolicy{}, zap.NewNop()), mock, store
}

func TestService_Get_MergesBucketAndRecord(t *testing.T) {
	svc, mock, store := newTestService(t)
	prefix := testOwnerID + "/" + testPropertyID + "/"
	store.keys[prefix] = []string{prefix + "b.jpg", prefix + "a.jpg"}

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `["`+prefix+`a.jpg", "https://cdn.test/x.jpg", "", "https://cdn.test/x.jpg"]`))

	d, err := svc.Get(context.Background(), testPropertyID)

	require.NoError(t, err)
	assert.Equal(t, []string{
		imageBase + "/" + prefix + "b.jpg",
		imageBase + "/" + prefix + "a.jpg",
		"https://cdn.test/x.jpg",
	}, d.Images)
	require.NotNil(t, d.CoverURL)
	assert.Equal(t, d.Images[0], *d.CoverURL)
	assert.Equal(t, "Carla Benítez", d.Owner.DisplayName)
}

func TestService_Get_ListFailureFallsBackToRecord(t *testing.T) {
	svc, mock, store := newTestService(t)
	store.listErr = errors.New("bucket unreachable")

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `"legacy/cover.jpg"`))

	d, err := svc.Get(context.Background(), testPropertyID)

	require.NoError(t, err)
	assert.Equal(t, []string{imageBase + "/legacy/cover.jpg"}, d.Images)
}

func TestService_Get_NoImages(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `[]`))

	d, err := svc.Get(context.Background(), testPropertyID)

	require.NoError(t, err)
	assert.Empty(t, d.Images)
	assert.Nil(t, d.CoverURL)
}

func TestService_List_SanitizesOwner(t *testing.T) {
	svc, mock, _ := newTestService(t)
	p := sampleProperty()
	p.OwnerName = strPtr(testOwnerID)
	p.OwnerAvatar = strPtr("404")

	rows := pgxmock.NewRows(append(propertyColumnNames, "total_count")).
		AddRow(append(propertyRow(p, `["/`+testOwnerID+`/cover.jpg"]`), 1)...)
	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(StatusActive, 20, 0).
		WillReturnRows(rows)

	page, err := svc.List(context.Background(), Filter{Limit: 20})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, displayname.Fallback, item.Owner.DisplayName)
	assert.Nil(t, item.Owner.AvatarURL)
	require.NotNil(t, item.CoverURL)
	assert.Equal(t, imageBase+"/"+testOwnerID+"/cover.jpg", *item.CoverURL)
	assert.Equal(t, 1, page.Total)
}

func TestService_AddImage(t *testing.T) {
	svc, mock, store := newTestService(t)
	prefix := testOwnerID + "/" + testPropertyID + "/"

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `[]`))
	mock.ExpectExec("UPDATE properties").
		WithArgs(testPropertyID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `[]`))

	img := &upload.Image{Data: []byte("jpeg"), ContentType: "image/jpeg"}
	_, err := svc.AddImage(context.Background(), testOwnerID, testPropertyID, img)

	require.NoError(t, err)
	require.Len(t, store.uploaded, 1)
	assert.True(t, strings.HasPrefix(store.uploaded[0], prefix))
	assert.True(t, strings.HasSuffix(store.uploaded[0], ".jpg"))
	assert.Equal(t, []string{prefix}, store.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AddImage_NotOwner(t *testing.T) {
	svc, mock, store := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `[]`))

	_, err := svc.AddImage(context.Background(), "someone-else", testPropertyID, &upload.Image{Data: []byte("x"), ContentType: "image/png"})

	assert.True(t, svc.IsForbidden(err))
	assert.Empty(t, store.uploaded)
}

func TestService_AddImage_UploadError(t *testing.T) {
	svc, mock, store := newTestService(t)
	store.uploadErr = errors.New("s3 down")

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `[]`))

	_, err := svc.AddImage(context.Background(), testOwnerID, testPropertyID, &upload.Image{Data: []byte("x"), ContentType: "image/png"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload property image")
	assert.Empty(t, store.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AddImage_DBErrorRemovesUpload(t *testing.T) {
	svc, mock, store := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM properties").
		WithArgs(testPropertyID).
		WillReturnRows(propertyRows(sampleProperty(), `[]`))
	mock.ExpectExec("UPDATE properties").
		WithArgs(testPropertyID, pgxmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := svc.AddImage(context.Background(), testOwnerID, testPropertyID, &upload.Image{Data: []byte("x"), ContentType: "image/png"})

	require.Error(t, err)
	require.Len(t, store.uploaded, 1)
	assert.Equal(t, store.uploaded, store.deleted)
	assert.Empty(t, store.invalidated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
