// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	pathwas "github.com/yousef-mustafa/pathWAS"
)

func main() {
	pathwas.Main()
}
