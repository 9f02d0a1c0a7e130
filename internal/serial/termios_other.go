// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

//go:build !linux

package serial

import "errors"

func configure(int, Settings) error {
	return errors.ErrUnsupported
}

func drain(int) error { return nil }
