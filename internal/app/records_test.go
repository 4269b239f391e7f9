package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bizzportal/bizzportal/internal/records/remote"
)

func TestOpenRecordsMemory(t *testing.T) {
	store, err := OpenRecords(context.Background(), &Config{RecordsSource: SourceMemory}, nil)
	require.NoError(t, err)
	defer store.Close()
	require.NotNil(t, store.Repository)
	require.NotNil(t, store.Source)
	require.Nil(t, store.Health)
}

func TestOpenRecordsRemoteIsReadOnly(t *testing.T) {
	store, err := OpenRecords(context.Background(), &Config{RecordsSource: SourceRemote, RecordsRemoteURL: "http://records.local"}, nil)
	require.NoError(t, err)
	require.Nil(t, store.Repository)
	require.IsType(t, &remote.Client{}, store.Source)
}

func TestOpenRecordsUnknownSource(t *testing.T) {
	_, err := OpenRecords(context.Background(), &Config{RecordsSource: "csv"}, nil)
	require.Error(t, err)
}
