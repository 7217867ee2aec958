package providers

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerview/internal/providers/email"
	"github.com/smallbiznis/ledgerview/internal/providers/pdf"
	"github.com/smallbiznis/ledgerview/internal/providers/slack"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
	slack.Module,
)
