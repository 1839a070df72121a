package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mginvestments/marketplace/internal/clock"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	"github.com/mginvestments/marketplace/internal/school/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSchoolService(t *testing.T) schooldomain.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&schooldomain.School{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestCreateSchool_SlugAndDefaults(t *testing.T) {
	svc := newSchoolService(t)

	school, err := svc.Create(context.Background(), schooldomain.CreateSchoolRequest{
		Name:  "Kampala International School",
		Email: "Info@KIS.ug",
	})
	require.NoError(t, err)
	assert.Equal(t, "kampala-international-school", school.Slug)
	assert.Equal(t, "info@kis.ug", school.Email)
	assert.True(t, school.Active)
	assert.Equal(t, schooldomain.SourceForm, school.Source)
}

func TestCreateSchool_RejectsEmptyName(t *testing.T) {
	svc := newSchoolService(t)

	_, err := svc.Create(context.Background(), schooldomain.CreateSchoolRequest{Name: "   "})
	assert.ErrorIs(t, err, schooldomain.ErrInvalidName)
}

func TestCreateSchool_DuplicateSlug(t *testing.T) {
	svc := newSchoolService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, schooldomain.CreateSchoolRequest{Name: "Gulu Primary School"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, schooldomain.CreateSchoolRequest{Name: "Gulu Primary School"})
	assert.ErrorIs(t, err, schooldomain.ErrSlugTaken)
}

func TestGetSchoolByID(t *testing.T) {
	svc := newSchoolService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, schooldomain.CreateSchoolRequest{Name: "Mbarara High School"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = svc.GetByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, schooldomain.ErrNotFound)

	_, err = svc.GetByID(ctx, 0)
	assert.ErrorIs(t, err, schooldomain.ErrInvalidID)
}

func TestListSchools_Filters(t *testing.T) {
	svc := newSchoolService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, schooldomain.CreateSchoolRequest{Name: "Kampala High School"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, schooldomain.CreateSchoolRequest{Name: "Jinja College"})
	require.NoError(t, err)

	all, err := svc.List(ctx, schooldomain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	named, err := svc.List(ctx, schooldomain.ListFilter{Name: "Kampala"})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, "Kampala High School", named[0].Name)
}
