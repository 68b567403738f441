package app

import (
	"fmt"

	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/notify"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
)

// gotrueAudience is the "aud" claim GoTrue puts on user sessions.
const gotrueAudience = "authenticated"

// initNotifier selects the notification transport. Every transport is
// wrapped so a failed delivery never reaches a request.
func (app *Application) initNotifier() error {
	var d notify.Dispatcher
	switch app.cfg.Notifier {
	case "smtp":
		smtp, err := notify.NewSMTP(notify.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
			TLS:      app.cfg.SMTPTLS,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize smtp notifier: %w", err)
		}
		d = smtp
	case "nats":
		nc, err := notify.ConnectNATS(app.cfg.NATSURL, app.cfg.NATSSubjectPrefix, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize nats notifier: %w", err)
		}
		app.closeNATS = nc.Close
		d = nc
	default:
		d = notify.LogDispatcher{}
	}

	app.notifier = notify.NewFireAndForget(d, notify.DefaultSendTimeout)
	app.logger.Info("notifier initialized", "notifier", app.cfg.Notifier)
	return nil
}

func (app *Application) closeNotifier() {
	app.notifier.Wait()
	if app.closeNATS != nil {
		if err := app.closeNATS(); err != nil {
			app.logger.Error("error draining nats connection", "error", err)
		}
	}
}

// initIdentity builds the identity provider and the verifier for bearer
// tokens on authenticated routes.
func (app *Application) initIdentity() error {
	switch app.cfg.IdentityProvider {
	case "gotrue":
		gt, err := identity.NewGoTrue(identity.GoTrueConfig{
			BaseURL:     app.cfg.GoTrueURL,
			ServiceKey:  app.cfg.GoTrueServiceKey,
			Store:       app.db,
			Provisioner: identity.StoreProvisioner{},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize gotrue provider: %w", err)
		}
		app.provider = gt
		// GoTrue's issuer depends on its deployment, so only the audience
		// is pinned.
		app.verifier = jwtx.NewCommonHS256([]byte(app.cfg.GoTrueJWTSecret), "", []string{gotrueAudience})
		app.logger.Info("identity provider initialized", "provider", "gotrue", "url", app.cfg.GoTrueURL)

	default:
		keys, err := jwtx.NewEphemeralSessionKeys(app.cfg.Issuer, []string{identity.SessionAudience})
		if err != nil {
			return fmt.Errorf("failed to initialize session keys: %w", err)
		}
		local, err := identity.NewLocal(identity.LocalConfig{
			Store:    app.db,
			Keys:     keys,
			Issuer:   app.cfg.Issuer,
			Notifier: app.notifier,
			AppURL:   app.cfg.AppURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize local provider: %w", err)
		}
		app.provider = local
		app.local = local
		app.keys = keys.KeySet
		app.verifier = local.Verifier()
		app.logger.Warn("local provider uses ephemeral session keys; sessions are invalidated on restart")
	}
	return nil
}
