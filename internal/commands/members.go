package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/exitcode"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

func init() {
	Register(&MembersCmd{})
	Register(&AddMemberCmd{})
	Register(&EditMemberCmd{})
	Register(&RmMemberCmd{})
}

// MembersCmd implements the members command.
type MembersCmd struct{}

func (c *MembersCmd) Name() string      { return "members" }
func (c *MembersCmd) Aliases() []string { return nil }
func (c *MembersCmd) Synopsis() string  { return "List team members" }
func (c *MembersCmd) Usage() string     { return "todoboard members" }
func (c *MembersCmd) NeedsAuth() bool   { return true }

func (c *MembersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MembersCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	members, err := env.Service.ListTeamMembers(ctx)
	if err != nil {
		return Fail(errOut, err)
	}
	if len(members) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no team members")
		}
		return exitcode.Success
	}
	for _, m := range members {
		output.FormatMember(out, m)
	}
	return exitcode.Success
}

// AddMemberCmd implements the addmember command.
type AddMemberCmd struct {
	avatar string
}

func (c *AddMemberCmd) Name() string      { return "addmember" }
func (c *AddMemberCmd) Aliases() []string { return nil }
func (c *AddMemberCmd) Synopsis() string  { return "Create a team member" }
func (c *AddMemberCmd) Usage() string     { return "todoboard addmember [--avatar <url>] <name...>" }
func (c *AddMemberCmd) NeedsAuth() bool   { return true }

func (c *AddMemberCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.avatar, "avatar", "", "")
}

func (c *AddMemberCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return usageError(errOut, "name required")
	}
	in := service.TeamMemberInput{Name: name}
	if c.avatar != "" {
		in.Avatar = service.String(c.avatar)
	}
	if _, err := env.Service.CreateTeamMember(ctx, in); err != nil {
		return Fail(errOut, err)
	}
	return succeed(env, out)
}

// EditMemberCmd implements the editmember command.
type EditMemberCmd struct {
	name   optionalString
	avatar optionalString
}

func (c *EditMemberCmd) Name() string      { return "editmember" }
func (c *EditMemberCmd) Aliases() []string { return nil }
func (c *EditMemberCmd) Synopsis() string  { return "Edit a team member" }
func (c *EditMemberCmd) Usage() string {
	return "todoboard editmember [--name <name>] [--avatar <url>] <id>"
}
func (c *EditMemberCmd) NeedsAuth() bool { return true }

func (c *EditMemberCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditMemberCmd{}
	fs.Var(&c.name, "name", "")
	fs.Var(&c.avatar, "avatar", "")
}

func (c *EditMemberCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "member")
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if !c.name.set && !c.avatar.set {
		return usageError(errOut, "nothing to change")
	}
	if c.name.set && strings.TrimSpace(c.name.value) == "" {
		return usageError(errOut, "name required")
	}

	// The update replaces the whole member, so start from the server's copy.
	current, err := env.Service.GetTeamMember(ctx, id)
	if err != nil {
		return Fail(errOut, err)
	}
	in := service.TeamMemberInput{Name: current.Name, Avatar: current.Avatar}
	if c.name.set {
		in.Name = strings.TrimSpace(c.name.value)
	}
	if c.avatar.set {
		in.Avatar = service.String(c.avatar.value)
	}

	if _, err := env.Service.UpdateTeamMember(ctx, id, in); err != nil {
		return Fail(errOut, err)
	}
	return succeed(env, out)
}

// RmMemberCmd implements the rmmember command.
type RmMemberCmd struct {
	yes bool
}

func (c *RmMemberCmd) Name() string      { return "rmmember" }
func (c *RmMemberCmd) Aliases() []string { return nil }
func (c *RmMemberCmd) Synopsis() string  { return "Delete a team member" }
func (c *RmMemberCmd) Usage() string     { return "todoboard rmmember [--yes] <id>" }
func (c *RmMemberCmd) NeedsAuth() bool   { return true }

func (c *RmMemberCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmMemberCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, err := ParseID(args, "member")
	if err != nil {
		return usageError(errOut, "%v", err)
	}

	if !c.yes && !confirm(env.Config.Stdin, errOut, fmt.Sprintf("delete team member #%d?", id)) {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}

	// Todos keep their assigned_to_id; names for unknown ids render as #id.
	if err := env.Service.DeleteTeamMember(ctx, id); err != nil {
		return Fail(errOut, err)
	}
	return succeed(env, out)
}
