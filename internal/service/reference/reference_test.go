package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/caseservice/pkg/httpclient"
	"github.com/Alijeyrad/caseservice/pkg/linkshub"
	"github.com/Alijeyrad/caseservice/pkg/logs"
)

// fakeDirectory knows doctors, products and doctor/lab relations by key.
type fakeDirectory struct {
	doctors   map[string]linkshub.Doctor
	products  map[string]linkshub.Product
	relations map[string]bool // doctor + "/" + lab -> is_active
	err       error
	calls     []string
}

func (f *fakeDirectory) GetDoctor(_ context.Context, id, _ string) (linkshub.Doctor, error) {
	f.calls = append(f.calls, "doctor")
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.doctors[id]
	if !ok {
		return nil, httpclient.ErrNotFound
	}
	return d, nil
}

func (f *fakeDirectory) GetProduct(_ context.Context, id, _ string) (linkshub.Product, error) {
	f.calls = append(f.calls, "product")
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, httpclient.ErrNotFound
	}
	return p, nil
}

func (f *fakeDirectory) GetRelation(_ context.Context, doctorID, labID, _ string) (*linkshub.Relation, error) {
	f.calls = append(f.calls, "relation")
	if f.err != nil {
		return nil, f.err
	}
	active, ok := f.relations[doctorID+"/"+labID]
	if !ok {
		return nil, httpclient.ErrNotFound
	}
	return &linkshub.Relation{IsActive: active}, nil
}

func (f *fakeDirectory) GetLabProducts(_ context.Context, labID, _ string) ([]linkshub.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []linkshub.Product{{"id": "p-1", "lab": labID}}, nil
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		doctors:  map[string]linkshub.Doctor{"d-1": {"id": "d-1"}, "d-2": {"id": "d-2"}},
		products: map[string]linkshub.Product{"p-1": {"id": "p-1"}},
		relations: map[string]bool{
			"d-1/lab-1": true,
			"d-2/lab-1": false,
		},
	}
}

func TestValidateCaseReferences(t *testing.T) {
	tests := []struct {
		name      string
		doctor    string
		product   string
		want      error
		wantCalls []string
	}{
		{"valid", "d-1", "p-1", nil, []string{"doctor", "relation", "product"}},
		{"unknown doctor", "d-9", "p-1", ErrDoctorNotFound, []string{"doctor"}},
		{"inactive relation", "d-2", "p-1", ErrDoctorNotInLab, []string{"doctor", "relation"}},
		{"unknown product", "d-1", "p-9", ErrProductNotFound, []string{"doctor", "relation", "product"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newDirectory()
			svc := New(dir, logs.Discard())

			err := svc.ValidateCaseReferences(context.Background(), tt.doctor, tt.product, "lab-1", "tok")
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
				assert.True(t, IsInvalidReference(err))
			}
			assert.Equal(t, tt.wantCalls, dir.calls)
		})
	}
}

func TestEmptyDirectoryRecordsAreMissing(t *testing.T) {
	ctx := context.Background()
	dir := newDirectory()
	dir.doctors["d-null"] = nil
	dir.doctors["d-empty"] = linkshub.Doctor{}
	dir.products["p-null"] = nil
	dir.relations["d-null/lab-1"] = true
	svc := New(dir, logs.Discard())

	for _, id := range []string{"d-null", "d-empty"} {
		_, ok := svc.DoctorExists(ctx, id, "tok")
		assert.False(t, ok, id)
		_, err := svc.Doctor(ctx, id, "tok")
		assert.ErrorIs(t, err, ErrDoctorNotFound, id)
	}
	_, ok := svc.ProductExists(ctx, "p-null", "tok")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.ValidateCaseReferences(ctx, "d-null", "p-1", "lab-1", "tok"), ErrDoctorNotFound)
	assert.ErrorIs(t, svc.ValidateCaseReferences(ctx, "d-1", "p-null", "lab-1", "tok"), ErrProductNotFound)
}

func TestValidateCaseReferencesMessages(t *testing.T) {
	assert.Equal(t, "Doctor not found", ErrDoctorNotFound.Error())
	assert.Equal(t, "Doctor is not associated with your lab", ErrDoctorNotInLab.Error())
	assert.Equal(t, "Product not found", ErrProductNotFound.Error())
}

func TestDoctorBelongsToLabFailsClosed(t *testing.T) {
	dir := newDirectory()
	dir.err = httpclient.ErrUnavailable
	svc := New(dir, logs.Discard())

	assert.False(t, svc.DoctorBelongsToLab(context.Background(), "d-1", "lab-1", "tok"))

	err := svc.ValidateCaseReferences(context.Background(), "d-1", "p-1", "lab-1", "tok")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestDoctorBelongsToLabOtherLab(t *testing.T) {
	svc := New(newDirectory(), logs.Discard())
	assert.True(t, svc.DoctorBelongsToLab(context.Background(), "d-1", "lab-1", "tok"))
	assert.False(t, svc.DoctorBelongsToLab(context.Background(), "d-1", "lab-2", "tok"))
}

func TestDoctor(t *testing.T) {
	ctx := context.Background()
	svc := New(newDirectory(), logs.Discard())

	d, err := svc.Doctor(ctx, "d-1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "d-1", d["id"])

	_, err = svc.Doctor(ctx, "d-9", "tok")
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	down := newDirectory()
	down.err = httpclient.ErrUnavailable
	_, err = New(down, logs.Discard()).Doctor(ctx, "d-1", "tok")
	assert.ErrorIs(t, err, ErrDirectoryDown)
}

func TestLabProducts(t *testing.T) {
	ctx := context.Background()

	products, err := New(newDirectory(), logs.Discard()).LabProducts(ctx, "lab-1", "tok")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "lab-1", products[0]["lab"])

	rejected := newDirectory()
	rejected.err = httpclient.ErrUnauthorized
	_, err = New(rejected, logs.Discard()).LabProducts(ctx, "lab-1", "tok")
	assert.ErrorIs(t, err, ErrDirectoryRejected)
}
