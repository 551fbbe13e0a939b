package mocks

import (
	"github.com/lobbyn/relay/internal/registry"
	"github.com/lobbyn/relay/internal/riot"
)

// Interface assertions live in a test file so importing mocks from the tests
// of registry or riot does not create an import cycle.

// Ensure MockProvider implements the client interface
var _ riot.Client = (*MockProvider)(nil)

// Ensure MockSender implements the registry's sender interface
var _ registry.Sender = (*MockSender)(nil)
