package shell

import _ "embed"

// Embedded shell completion templates. Each one is a fmt format taking the
// function suffix, the argot binary, the grammar path and the command names.

//go:embed templates/completion/bash.tmpl
var bashTemplate string

//go:embed templates/completion/zsh.tmpl
var zshTemplate string

//go:embed templates/completion/fish.tmpl
var fishTemplate string
