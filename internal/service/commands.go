package service

import (
	"context"

	"planner/internal/domain"
)

// Command is one user action applied to a session's wizard.
type Command interface {
	// Name identifies the command in logs and metrics.
	Name() string

	// Apply runs the command against the controller.
	Apply(ctx context.Context, c *WizardController) error
}

// UpdateDraft applies form input.
type UpdateDraft struct {
	Patch DraftPatch
}

func (UpdateDraft) Name() string { return "update_draft" }

func (cmd UpdateDraft) Apply(_ context.Context, c *WizardController) error {
	return c.ApplyPatch(cmd.Patch)
}

// UpdatePreference checks or unchecks a preference and/or picks its interest
// level. Nil fields are left alone.
type UpdatePreference struct {
	Preference domain.Preference
	Selected   *bool
	Level      *domain.InterestLevel
}

func (UpdatePreference) Name() string { return "update_preference" }

func (cmd UpdatePreference) Apply(_ context.Context, c *WizardController) error {
	return c.UpdatePreference(cmd.Preference, cmd.Selected, cmd.Level)
}

// Next advances to the following step.
type Next struct{}

func (Next) Name() string { return "next" }

func (Next) Apply(ctx context.Context, c *WizardController) error {
	_, err := c.Next(ctx)
	return err
}

// Back returns to the previous step.
type Back struct{}

func (Back) Name() string { return "back" }

func (Back) Apply(ctx context.Context, c *WizardController) error {
	return c.Back(ctx)
}

// EditJump jumps from the review step to an earlier step.
type EditJump struct {
	Target domain.Step
}

func (EditJump) Name() string { return "edit_jump" }

func (cmd EditJump) Apply(ctx context.Context, c *WizardController) error {
	return c.EditJump(ctx, cmd.Target)
}

// Save persists the draft explicitly.
type Save struct{}

func (Save) Name() string { return "save" }

func (Save) Apply(ctx context.Context, c *WizardController) error {
	return c.Save(ctx)
}

// Clear discards the draft.
type Clear struct{}

func (Clear) Name() string { return "clear" }

func (Clear) Apply(ctx context.Context, c *WizardController) error {
	return c.Clear(ctx)
}

// DismissNotice removes a notice from the view.
type DismissNotice struct {
	ID string
}

func (DismissNotice) Name() string { return "dismiss_notice" }

func (cmd DismissNotice) Apply(_ context.Context, c *WizardController) error {
	c.DismissNotice(cmd.ID)
	return nil
}

// Generate submits the draft. On success Request holds the generation payload.
type Generate struct {
	Request *domain.PlanRequest
}

func (*Generate) Name() string { return "generate" }

func (cmd *Generate) Apply(ctx context.Context, c *WizardController) error {
	req, err := c.Generate(ctx)
	if err != nil {
		return err
	}
	cmd.Request = req
	return nil
}
