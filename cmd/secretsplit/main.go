// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretsplit.
//
// go-secretsplit is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Command secretsplit splits data from stdin into n shares, any k of which
// restore it.
//
//	echo -n "yup" | secretsplit create 3 2 > shares.txt
//	head -n 2 shares.txt | secretsplit combine
package main

import (
	"os"

	"github.com/jeremyhahn/go-secretsplit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
