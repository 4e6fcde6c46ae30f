// Package secrets resolves startup configuration secrets. In development the
// process environment is the only source and missing values are warnings; in
// production each secret is fetched from the managed secret service and a
// missing required secret aborts startup before the server accepts traffic.
package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/config"
)

// Mode is chosen once at startup and never re-checked afterwards.
type Mode int

const (
	ModeDevelopment Mode = iota
	ModeProduction
)

// ModeFor selects the provisioning mode: production behavior requires both
// the production environment flag and a configured project id.
func ModeFor(env config.Environment, projectID string) Mode {
	if env == config.EnvProduction && projectID != "" {
		return ModeProduction
	}
	return ModeDevelopment
}

// Secret names as they appear in the environment and in the secret service.
const (
	NameSessionSecret      = "SESSION_SECRET"
	NameSendgridAPIKey     = "SENDGRID_API_KEY"
	NameSendgridFrom       = "SENDGRID_FROM"
	NameTwilioAccountSID   = "TWILIO_ACCOUNT_SID"
	NameTwilioAuthToken    = "TWILIO_AUTH_TOKEN"
	NameTwilioPhoneNumber  = "TWILIO_PHONE_NUMBER"
	NameFirebaseServiceKey = "FIREBASE_SERVICE_ACCOUNT_KEY"
)

// Bundle holds the resolved secret values. Resolved once at process start and
// treated as immutable afterwards.
type Bundle struct {
	SessionSecret      string
	SendgridAPIKey     string
	SendgridFrom       string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioPhoneNumber  string
	FirebaseServiceKey string
}

// MissingRequiredSecretError aborts production startup. Serving traffic with
// incomplete required configuration is worse than refusing to start.
type MissingRequiredSecretError struct {
	Secret    string
	ProjectID string
	Err       error
}

func (e *MissingRequiredSecretError) Error() string {
	return fmt.Sprintf("required secret %s unavailable in project %s: %v", e.Secret, e.ProjectID, e.Err)
}

func (e *MissingRequiredSecretError) Unwrap() error {
	return e.Err
}

type secretSpec struct {
	name     string
	required bool
	assign   func(*Bundle, string)
}

var secretSpecs = []secretSpec{
	{NameSessionSecret, true, func(b *Bundle, v string) { b.SessionSecret = v }},
	{NameSendgridAPIKey, true, func(b *Bundle, v string) { b.SendgridAPIKey = v }},
	{NameSendgridFrom, false, func(b *Bundle, v string) { b.SendgridFrom = v }},
	{NameTwilioAccountSID, false, func(b *Bundle, v string) { b.TwilioAccountSID = v }},
	{NameTwilioAuthToken, false, func(b *Bundle, v string) { b.TwilioAuthToken = v }},
	{NameTwilioPhoneNumber, false, func(b *Bundle, v string) { b.TwilioPhoneNumber = v }},
}

type Provisioner struct {
	mode      Mode
	projectID string
	source    Source
	log       zerolog.Logger
	lookup    func(string) string
}

// NewProvisioner wires a provisioner for the given mode. source may be nil in
// development mode, where it is never consulted.
func NewProvisioner(mode Mode, projectID string, source Source, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		mode:      mode,
		projectID: projectID,
		source:    source,
		log:       log,
		lookup:    os.Getenv,
	}
}

// Load resolves all secrets. It runs exactly once at startup, strictly before
// any request-serving component initializes.
func (p *Provisioner) Load(ctx context.Context) (Bundle, error) {
	if p.mode == ModeDevelopment {
		return p.loadFromEnv(), nil
	}
	return p.loadFromService(ctx)
}

// loadFromEnv only checks for presence; values are expected to have been
// loaded into the environment already (for example from a local env file).
// Never remote, never fatal.
func (p *Provisioner) loadFromEnv() Bundle {
	var bundle Bundle
	var missing []string
	for _, spec := range secretSpecs {
		value := p.lookup(spec.name)
		if value == "" {
			missing = append(missing, spec.name)
			continue
		}
		spec.assign(&bundle, value)
	}
	bundle.FirebaseServiceKey = p.lookup(NameFirebaseServiceKey)

	if len(missing) > 0 {
		p.log.Warn().
			Strs("secrets", missing).
			Msg("expected secrets absent from environment; some features may be disabled")
	}
	return bundle
}

func (p *Provisioner) loadFromService(ctx context.Context) (Bundle, error) {
	var bundle Bundle
	for _, spec := range secretSpecs {
		// Prior environment value survives an optional fetch failure.
		spec.assign(&bundle, p.lookup(spec.name))

		value, err := p.source.AccessLatest(ctx, p.projectID, spec.name)
		if err != nil {
			if spec.required {
				return Bundle{}, &MissingRequiredSecretError{
					Secret:    spec.name,
					ProjectID: p.projectID,
					Err:       err,
				}
			}
			p.log.Warn().
				Err(err).
				Str("secret", spec.name).
				Msg("optional secret unavailable")
			continue
		}
		spec.assign(&bundle, value)
	}

	bundle.FirebaseServiceKey = p.loadFirebaseKey(ctx)
	return bundle, nil
}

// loadFirebaseKey fetches the service-account key only when no credential
// configuration is already present; alternate credential-resolution paths may
// exist, so its absence is logged but never fatal.
func (p *Provisioner) loadFirebaseKey(ctx context.Context) string {
	if existing := p.lookup(NameFirebaseServiceKey); existing != "" {
		return existing
	}
	if p.lookup("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		return ""
	}

	value, err := p.source.AccessLatest(ctx, p.projectID, NameFirebaseServiceKey)
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("secret", NameFirebaseServiceKey).
			Msg("service account key unavailable; relying on ambient credentials")
		return ""
	}
	return value
}
