package main

import (
	"strings"
	"testing"

	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/stretchr/testify/require"
)

func TestCumulativeToCounts(t *testing.T) {
	require.Equal(t, []int64{3, 0, 5}, cumulativeToCounts([]int64{3, 3, 8}))
}

func TestParseBalanceMode(t *testing.T) {
	mode, err := parseBalanceMode("face")
	require.NoError(t, err)
	require.Equal(t, qtree.ModeFace, mode)

	_, err = parseBalanceMode("bogus")
	require.Error(t, err)
}

func TestFormatConnectivityListsEveryTree(t *testing.T) {
	conn := connectivity.NewLShapeConnectivity()
	out := formatConnectivity(conn)
	require.True(t, strings.Contains(out, "3 trees, 7 vertices"))
	require.Equal(t, conn.NumTrees, strings.Count(out, "tree "))
}
