package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCommands(t *testing.T) {
	var names []string
	for _, cmd := range getCommands("test") {
		names = append(names, cmd.Name)
		assert.NotEmpty(t, cmd.Usage, cmd.Name)
		assert.NotNil(t, cmd.Action, cmd.Name)
	}

	assert.ElementsMatch(t, []string{
		"server",
		"migrate",
		"clean-audit-events",
		"create-master-key",
		"key-info",
		"validate-key",
		"rotate-master-key",
	}, names)
}
