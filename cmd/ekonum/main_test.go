package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/app"
	_ "github.com/odyssey-erp/ekonum/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	main()
}
