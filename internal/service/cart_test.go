package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/dto"
)

func TestAddPaidCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)

	result, err := env.cart.Add(ctx, "user-1", "go-foundations")
	require.NoError(t, err)

	assert.Equal(t, dto.CartActionAdded, result.Action)
	require.NotNil(t, result.CartItem)
	assert.Equal(t, "go-foundations", result.CartItem.CourseID)

	count, err := env.cart.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAddSameCourseTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)

	_, err := env.cart.Add(ctx, "user-1", "go-foundations")
	require.NoError(t, err)

	_, err = env.cart.Add(ctx, "user-1", "go-foundations")
	assert.ErrorIs(t, err, ErrAlreadyInCart)

	count, err := env.cart.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "duplicate add must not grow the cart")
}

func TestCartsAreScopedPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)

	_, err := env.cart.Add(ctx, "user-1", "go-foundations")
	require.NoError(t, err)
	_, err = env.cart.Add(ctx, "user-2", "go-foundations")
	require.NoError(t, err, "another user may cart the same course")
}

func TestAddFreeCourseEnrollsDirectly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "intro-to-git", 0)

	result, err := env.cart.Add(ctx, "user-1", "intro-to-git")
	require.NoError(t, err)

	assert.Equal(t, dto.CartActionEnrolled, result.Action)
	assert.Nil(t, result.CartItem)

	count, err := env.cart.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count, "free course must not create a cart item")

	enrolled, err := env.enrollments.IsEnrolled(ctx, "user-1", "intro-to-git")
	require.NoError(t, err)
	assert.True(t, enrolled)

	enrollments, err := env.enrollments.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, enrollments, 1, "exactly one enrollment for (user, course)")
}

func TestAddOwnedCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "intro-to-git", 0)

	_, err := env.cart.Add(ctx, "user-1", "intro-to-git")
	require.NoError(t, err)

	_, err = env.cart.Add(ctx, "user-1", "intro-to-git")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
}

func TestAddUnknownCourse(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.cart.Add(context.Background(), "user-1", "no-such-course")

	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)

	result, err := env.cart.Add(ctx, "user-1", "go-foundations")
	require.NoError(t, err)

	require.NoError(t, env.cart.Remove(ctx, "user-1", result.CartItem.ID))

	inCart, err := env.cart.Check(ctx, "user-1", "go-foundations")
	require.NoError(t, err)
	assert.False(t, inCart)
}

func TestActivateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "go-foundations", 50)

	require.NoError(t, env.enrollments.ActivateFree(ctx, "user-1", "go-foundations"))
	require.NoError(t, env.enrollments.ActivateFree(ctx, "user-1", "go-foundations"))

	enrollments, err := env.enrollments.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)
}
