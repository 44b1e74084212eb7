package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validStore() StoreInput {
	return StoreInput{
		Title:   "Rotating service API keys",
		Content: strings.Repeat("Rotate keys every ninety days using the vault CLI. ", 3),
		Tags:    []string{"security", "api-keys"},
		Scope:   "project:vault",
	}
}

func TestStoreValid(t *testing.T) {
	v := Store(validStore())
	assert.True(t, v.OK(), "unexpected violations: %s", v.Summary())
}

func TestStoreTitleBounds(t *testing.T) {
	in := validStore()

	in.Title = strings.Repeat("a", 9)
	assert.False(t, Store(in).OK())

	in.Title = strings.Repeat("a", 10)
	assert.True(t, Store(in).OK())

	in.Title = strings.Repeat("a", 100)
	assert.True(t, Store(in).OK())

	in.Title = strings.Repeat("a", 101)
	assert.False(t, Store(in).OK())
}

func TestStoreTitleTrimmedBeforeMeasuring(t *testing.T) {
	in := validStore()
	in.Title = "   " + strings.Repeat("a", 9) + "   "
	assert.False(t, Store(in).OK())
}

func TestStoreContentBounds(t *testing.T) {
	in := validStore()

	in.Content = strings.Repeat("b", 49)
	assert.False(t, Store(in).OK())

	in.Content = strings.Repeat("b", 50)
	assert.True(t, Store(in).OK())

	in.Content = strings.Repeat("b", 5000)
	assert.True(t, Store(in).OK())

	in.Content = strings.Repeat("b", 5001)
	assert.False(t, Store(in).OK())
}

func TestStoreGenericContentRejected(t *testing.T) {
	in := validStore()
	for _, prefix := range []string{"TODO", "todo:", "Remember this", "note to self -"} {
		in.Content = prefix + " " + strings.Repeat("filler words here ", 5)
		v := Store(in)
		assert.False(t, v.OK(), "expected rejection for prefix %q", prefix)
	}
}

func TestStoreCollectsAllViolations(t *testing.T) {
	v := Store(StoreInput{
		Title:   "short",
		Content: "too short",
		Tags:    []string{"Bad Tag!"},
		Scope:   "office:nyc",
	})
	assert.Len(t, v, 4)
	assert.Contains(t, v.Summary(), "; ")
}

func TestStoreTags(t *testing.T) {
	in := validStore()

	in.Tags = []string{"valid-tag", "UPPER"} // case folded before matching
	assert.True(t, Store(in).OK())

	in.Tags = []string{"-leading-hyphen"}
	assert.False(t, Store(in).OK())

	in.Tags = []string{"has space"}
	assert.False(t, Store(in).OK())

	in.Tags = make([]string, 11)
	for i := range in.Tags {
		in.Tags[i] = "t" + strings.Repeat("a", i+1)
	}
	assert.False(t, Store(in).OK())
}

func TestStoreScope(t *testing.T) {
	in := validStore()
	for _, scope := range []string{"", "global", "GLOBAL", "project:my_app", "repo:infra-2"} {
		in.Scope = scope
		assert.True(t, Store(in).OK(), "scope %q should be valid", scope)
	}
	for _, scope := range []string{"project:", "repo:with space", "team:core", "project:a/b"} {
		in.Scope = scope
		assert.False(t, Store(in).OK(), "scope %q should be invalid", scope)
	}
}

func TestUpdateRequiresAField(t *testing.T) {
	v := Update(UpdateInput{})
	assert.False(t, v.OK())
	assert.Contains(t, v.Summary(), "at least one")
}

func TestUpdateValidatesOnlySuppliedFields(t *testing.T) {
	badTitle := "short"
	v := Update(UpdateInput{Title: &badTitle})
	assert.Len(t, v, 1)
	assert.Equal(t, "title", v[0].Field)

	goodScope := "repo:docs"
	assert.True(t, Update(UpdateInput{Scope: &goodScope}).OK())
}

func TestQueryBounds(t *testing.T) {
	assert.False(t, Query("ab").OK())
	assert.True(t, Query("abc").OK())
	assert.True(t, Query(strings.Repeat("q", 500)).OK())
	assert.False(t, Query(strings.Repeat("q", 501)).OK())
	assert.False(t, Query("   ").OK())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, ClampLimit(0))
	assert.Equal(t, 1, ClampLimit(-10))
	assert.Equal(t, 5, ClampLimit(5))
	assert.Equal(t, 20, ClampLimit(20))
	assert.Equal(t, 20, ClampLimit(1000))
}
