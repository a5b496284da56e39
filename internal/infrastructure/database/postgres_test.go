package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseDSN(t *testing.T) {
	dsn, err := supabaseDSN("https://abcd.supabase.co/", "secret")
	require.NoError(t, err)
	assert.Equal(t, "host=db.abcd.supabase.co port=6543 user=postgres password=secret dbname=postgres sslmode=require", dsn)

	_, err = supabaseDSN("", "secret")
	assert.Error(t, err)
	_, err = supabaseDSN("https://abcd.supabase.co", "")
	assert.Error(t, err)
}
