package main

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiofoks/siteops/config"
)

func TestValidateWithoutSitemapIsConfigError(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg = &config.Config{}
	validateSitemap = ""

	err = validateCmd.RunE(validateCmd, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrConfig))
}
