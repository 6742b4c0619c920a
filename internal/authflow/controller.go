// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authflow drives the progressive mobile sign-in.

The flow starts at mobile entry. The backend decides whether the number
belongs to an existing account: known accounts continue to password entry,
unknown ones receive a one-time code and continue to code verification. A
successful password or code writes the session, fires the completion
callback and resets the controller so the same instance serves the next
sign-in.

# Concurrency

A [Controller] is safe for concurrent use. State is guarded by a mutex and
gateway calls run without it. Each attempt captures a generation number;
[Controller.Cancel] and every reset advance the generation, so a result
arriving for an abandoned attempt is dropped instead of resurrecting state.
While a call is in flight every submit is a no-op and input edits are ignored.

No method returns an error. Failures keep the current step and surface a
localized message through [State.Error].
*/
package authflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/gateway"
	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/mobile"
	"github.com/taibuivan/safar/internal/platform/constants"
)

// # Dependencies

// Gateway is the subset of the auth backend client the flow needs.
type Gateway interface {
	InitLogin(ctx context.Context, mobile string) gateway.Result
	SendVerificationCode(ctx context.Context, mobile string) gateway.Result
	VerifyCode(ctx context.Context, mobile, code string) gateway.Result
	LoginWithPassword(ctx context.Context, mobile, password string) gateway.Result
}

// SessionWriter persists the credentials of a successful sign-in.
type SessionWriter interface {
	Write(ctx context.Context, token string, user *identity.Principal) error
}

// firstLoginMarker is implemented by session stores that remember which
// principals have signed in before.
type firstLoginMarker interface {
	MarkFirstLogin(ctx context.Context, userID identity.ID) (bool, error)
}

// # Controller

// Controller is the sign-in state machine.
type Controller struct {
	gateway    Gateway
	sessions   SessionWriter
	validator  *mobile.Validator
	selector   *country.Selector
	translator *i18n.Translator
	logger     *slog.Logger

	onAuthenticated func(Authenticated)
	onAbandoned     func()

	mu          sync.Mutex
	generation  uint64
	step        Step
	mobile      string
	approved    string
	password    string
	code        string
	userExists  bool
	hasPassword bool
	status      Status
	validation  mobile.Result
}

// Option customizes a [Controller].
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(controller *Controller) { controller.logger = logger }
}

// WithTranslator sets the language of the flow's own messages.
func WithTranslator(translator *i18n.Translator) Option {
	return func(controller *Controller) { controller.translator = translator }
}

// OnAuthenticated registers the completion callback. It runs after the
// session is written, outside the controller's lock.
func OnAuthenticated(callback func(Authenticated)) Option {
	return func(controller *Controller) { controller.onAuthenticated = callback }
}

// OnAbandoned registers the callback fired by [Controller.Cancel].
func OnAbandoned(callback func()) Option {
	return func(controller *Controller) { controller.onAbandoned = callback }
}

// New creates a Controller at mobile entry.
func New(gw Gateway, sessions SessionWriter, validator *mobile.Validator, selector *country.Selector, opts ...Option) *Controller {
	controller := &Controller{
		gateway:    gw,
		sessions:   sessions,
		validator:  validator,
		selector:   selector,
		translator: i18n.New(constants.DefaultLanguage),
		logger:     slog.Default(),
		status:     Idle{},
	}
	for _, opt := range opts {
		opt(controller)
	}

	controller.validation = controller.validator.Validate("", controller.selector.Current().ISOCode)
	return controller
}

// State returns a snapshot of the flow.
func (controller *Controller) State() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshot()
}

func (controller *Controller) snapshot() State {
	return State{
		Step:        controller.step,
		Country:     controller.selector.Current(),
		Mobile:      controller.mobile,
		Pinned:      controller.approved,
		Password:    controller.password,
		Code:        controller.code,
		UserExists:  controller.userExists,
		HasPassword: controller.hasPassword,
		Status:      controller.status,
		Validation:  controller.validation,
	}
}

// # Input

// SetMobile replaces the mobile buffer with the digits of raw, clears any
// error and revalidates against the active country. The buffer is editable
// only at mobile entry.
func (controller *Controller) SetMobile(raw string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.isLoading() || controller.step != StepMobileEntry {
		return
	}

	controller.mobile = mobile.Sanitize(raw)
	controller.status = Idle{}
	controller.revalidate()
}

// SetPassword replaces the password buffer.
func (controller *Controller) SetPassword(password string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.isLoading() {
		return
	}
	controller.password = password
}

// SetCode keeps the first six digits of raw.
func (controller *Controller) SetCode(raw string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.isLoading() {
		return
	}

	digits := mobile.Sanitize(raw)
	if len(digits) > constants.VerificationCodeLength {
		digits = digits[:constants.VerificationCodeLength]
	}
	controller.code = digits
}

// ChangeCountry activates iso and revalidates the mobile buffer. The step is
// kept. Selecting the active country, or an unknown one, changes nothing.
// Past mobile entry the number the backend accepted stays pinned; a country
// that makes the buffer invalid blocks the next submit instead.
func (controller *Controller) ChangeCountry(iso string) State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.isLoading() || controller.selector.Current().ISOCode == iso {
		return controller.snapshot()
	}

	if _, err := controller.selector.Select(iso); err != nil {
		controller.logger.Debug("auth_flow_unknown_country", slog.String("iso", iso))
		return controller.snapshot()
	}

	controller.status = Idle{}
	controller.revalidate()
	controller.logTransition("change_country")
	return controller.snapshot()
}

// # Transitions

// Submit dispatches to the submit of the current step.
func (controller *Controller) Submit(ctx context.Context) State {
	switch controller.State().Step {
	case StepPasswordEntry:
		return controller.SubmitPassword(ctx)
	case StepCodeVerification:
		return controller.SubmitCode(ctx)
	default:
		return controller.SubmitMobile(ctx)
	}
}

// SubmitMobile validates the mobile buffer and asks the backend whether the
// account exists. Known accounts move to password entry. Unknown accounts are
// sent a code and move to code verification. Either way the international
// number is pinned for the rest of the attempt.
func (controller *Controller) SubmitMobile(ctx context.Context) State {
	controller.mu.Lock()
	if controller.isLoading() || controller.step != StepMobileEntry {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	controller.revalidate()
	if !controller.validation.IsValid {
		defer controller.mu.Unlock()
		controller.status = Failed{Message: controller.validation.Message}
		return controller.snapshot()
	}

	generation := controller.begin()
	number := mobile.International(controller.selector.Current().DialCode, controller.mobile)
	controller.mu.Unlock()

	result := controller.gateway.InitLogin(ctx, number)
	if !result.Success {
		return controller.fail(generation, result.Message, i18n.ServerConnection)
	}

	if result.UserExists {
		return controller.settle(generation, func() {
			controller.approved = number
			controller.userExists = true
			controller.hasPassword = result.HasPassword
			controller.step = StepPasswordEntry
		})
	}

	// The chain continues only if nobody cancelled in between
	if !controller.current(generation) {
		return controller.State()
	}

	sent := controller.gateway.SendVerificationCode(ctx, number)
	if !sent.Success {
		return controller.fail(generation, sent.Message, i18n.SendCodeError)
	}

	return controller.settle(generation, func() {
		controller.approved = number
		controller.userExists = false
		controller.step = StepCodeVerification
	})
}

// SubmitPassword signs an existing account in with the password buffer.
func (controller *Controller) SubmitPassword(ctx context.Context) State {
	controller.mu.Lock()
	if controller.isLoading() || controller.step != StepPasswordEntry {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	if strings.TrimSpace(controller.password) == "" {
		defer controller.mu.Unlock()
		controller.status = Failed{Message: controller.translator.T(i18n.EnterPassword)}
		return controller.snapshot()
	}

	if !controller.pinnedValid() {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	generation := controller.begin()
	number := controller.approved
	password := controller.password
	controller.mu.Unlock()

	result := controller.gateway.LoginWithPassword(ctx, number, password)
	if !result.Success {
		return controller.fail(generation, result.Message, i18n.InvalidPassword)
	}

	return controller.complete(ctx, generation, result)
}

// RequestCode switches an existing account from password to code sign-in.
func (controller *Controller) RequestCode(ctx context.Context) State {
	controller.mu.Lock()
	if controller.isLoading() || controller.step != StepPasswordEntry {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	if !controller.pinnedValid() {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	generation := controller.begin()
	number := controller.approved
	controller.mu.Unlock()

	result := controller.gateway.SendVerificationCode(ctx, number)
	if !result.Success {
		return controller.fail(generation, result.Message, i18n.SendCodeError)
	}

	return controller.settle(generation, func() {
		controller.password = ""
		controller.step = StepCodeVerification
	})
}

// SubmitCode redeems the six-digit code buffer.
func (controller *Controller) SubmitCode(ctx context.Context) State {
	controller.mu.Lock()
	if controller.isLoading() || controller.step != StepCodeVerification {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	if len(controller.code) != constants.VerificationCodeLength {
		defer controller.mu.Unlock()
		controller.status = Failed{Message: controller.translator.T(i18n.VerificationCodeLength)}
		return controller.snapshot()
	}

	if !controller.pinnedValid() {
		defer controller.mu.Unlock()
		return controller.snapshot()
	}

	generation := controller.begin()
	number := controller.approved
	code := controller.code
	controller.mu.Unlock()

	result := controller.gateway.VerifyCode(ctx, number, code)
	if !result.Success {
		return controller.fail(generation, result.Message, i18n.InvalidVerificationCode)
	}

	return controller.complete(ctx, generation, result)
}

// Back returns from code verification to mobile entry. The code and any
// error are cleared; the mobile buffer is kept.
func (controller *Controller) Back() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.isLoading() || controller.step != StepCodeVerification {
		return controller.snapshot()
	}

	controller.code = ""
	controller.approved = ""
	controller.status = Idle{}
	controller.step = StepMobileEntry
	controller.logTransition("back")
	return controller.snapshot()
}

// Cancel abandons the flow from any step, including while a call is in
// flight. The in-flight result is ignored when it arrives.
func (controller *Controller) Cancel() State {
	controller.mu.Lock()
	controller.reset()
	controller.logTransition("cancel")
	state := controller.snapshot()
	controller.mu.Unlock()

	if controller.onAbandoned != nil {
		controller.onAbandoned()
	}
	return state
}

// # Internals

func (controller *Controller) isLoading() bool {
	_, ok := controller.status.(Loading)
	return ok
}

func (controller *Controller) revalidate() {
	controller.validation = controller.validator.Validate(controller.mobile, controller.selector.Current().ISOCode)
}

// pinnedValid revalidates the buffer against the active country before a
// call on the pinned number. On failure the validation message is shown.
// The caller holds the lock.
func (controller *Controller) pinnedValid() bool {
	controller.revalidate()
	if !controller.validation.IsValid {
		controller.status = Failed{Message: controller.validation.Message}
		return false
	}
	return true
}

// begin marks the flow as loading and returns the attempt's generation.
// The caller holds the lock.
func (controller *Controller) begin() uint64 {
	controller.generation++
	controller.status = Loading{}
	controller.logTransition("request_started")
	return controller.generation
}

// current reports whether generation is still the active attempt.
func (controller *Controller) current(generation uint64) bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.generation == generation
}

// settle applies a successful, non-terminal transition.
func (controller *Controller) settle(generation uint64, apply func()) State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.generation != generation {
		controller.logger.Debug("auth_flow_stale_result_dropped")
		return controller.snapshot()
	}

	apply()
	controller.status = Idle{}
	controller.logTransition("request_succeeded")
	return controller.snapshot()
}

// fail keeps the step and shows message, or the localized fallback when the
// backend sent none.
func (controller *Controller) fail(generation uint64, message, fallbackKey string) State {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.generation != generation {
		controller.logger.Debug("auth_flow_stale_result_dropped")
		return controller.snapshot()
	}

	if message == "" {
		message = controller.translator.T(fallbackKey)
	}
	controller.status = Failed{Message: message}
	controller.logTransition("request_failed")
	return controller.snapshot()
}

// complete writes the session of a terminal success, resets the flow and
// fires the completion callback.
func (controller *Controller) complete(ctx context.Context, generation uint64, result gateway.Result) State {
	controller.mu.Lock()

	if controller.generation != generation {
		defer controller.mu.Unlock()
		controller.logger.Debug("auth_flow_stale_result_dropped")
		return controller.snapshot()
	}

	if result.Token == "" || result.User == nil {
		defer controller.mu.Unlock()
		controller.logger.ErrorContext(ctx, "auth_flow_incomplete_credentials",
			slog.Bool("has_token", result.Token != ""),
			slog.Bool("has_user", result.User != nil),
		)
		controller.status = Failed{Message: controller.translator.T(i18n.ServerConnection)}
		return controller.snapshot()
	}

	if err := controller.sessions.Write(ctx, result.Token, result.User); err != nil {
		defer controller.mu.Unlock()
		controller.logger.ErrorContext(ctx, "auth_flow_session_write_failed", slog.Any("error", err))
		controller.status = Failed{Message: controller.translator.T(i18n.SessionSave)}
		return controller.snapshot()
	}

	authenticated := Authenticated{Token: result.Token, User: result.User}
	if marker, ok := controller.sessions.(firstLoginMarker); ok {
		first, err := marker.MarkFirstLogin(ctx, result.User.ID)
		if err != nil {
			controller.logger.WarnContext(ctx, "auth_flow_first_login_mark_failed", slog.Any("error", err))
		}
		authenticated.FirstLogin = first
	}

	controller.reset()
	controller.logger.InfoContext(ctx, "auth_flow_authenticated", slog.String("user_id", string(result.User.ID)))
	state := controller.snapshot()
	controller.mu.Unlock()

	if controller.onAuthenticated != nil {
		controller.onAuthenticated(authenticated)
	}
	return state
}

// reset returns to mobile entry with empty buffers. The country is kept.
// The caller holds the lock.
func (controller *Controller) reset() {
	controller.generation++
	controller.step = StepMobileEntry
	controller.mobile = ""
	controller.approved = ""
	controller.password = ""
	controller.code = ""
	controller.userExists = false
	controller.hasPassword = false
	controller.status = Idle{}
	controller.revalidate()
}

func (controller *Controller) logTransition(event string) {
	controller.logger.Debug("auth_flow_transition",
		slog.String("event", event),
		slog.String("step", controller.step.String()),
		slog.Bool("loading", controller.isLoading()),
	)
}
