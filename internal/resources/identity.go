package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/writer"
)

// IAM listings are account-wide. Items are nested under their IAM path.

func principal(nameField string) *shape.ObjectShape {
	return shape.Object(
		shape.Required("Path", shape.String().Max(512)),
		shape.Required(nameField, nameString()),
		shape.Optional("Arn", nameString()),
		shape.Optional("CreateDate", shape.Time()),
		shape.Optional("Tags", tagList("Key", "Value")),
	)
}

func rolesKind(c Clients) writer.Kind[iamtypes.Role] {
	item := principal("RoleName")
	return writer.Kind[iamtypes.Role]{
		Name:   "roles",
		Global: true,
		Item:   item,
		Page:   bounded(item, 100000),
		List: func(ctx context.Context, _ string) pager.Cursor[iamtypes.Role] {
			client := c.IAM(GlobalRegion)
			p := iam.NewListRolesPaginator(client, &iam.ListRolesInput{}, func(o *iam.ListRolesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *iam.ListRolesOutput) []iamtypes.Role {
				return out.Roles
			})
		},
		Identity: writer.Under("Path", "RoleName"),
	}
}

func usersKind(c Clients) writer.Kind[iamtypes.User] {
	item := principal("UserName")
	return writer.Kind[iamtypes.User]{
		Name:   "users",
		Global: true,
		Item:   item,
		Page:   bounded(item, 100000),
		List: func(ctx context.Context, _ string) pager.Cursor[iamtypes.User] {
			client := c.IAM(GlobalRegion)
			p := iam.NewListUsersPaginator(client, &iam.ListUsersInput{}, func(o *iam.ListUsersPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *iam.ListUsersOutput) []iamtypes.User {
				return out.Users
			})
		},
		Identity: writer.Under("Path", "UserName"),
	}
}

func policiesKind(c Clients) writer.Kind[iamtypes.Policy] {
	item := shape.Object(
		shape.Required("Path", shape.String().Max(512)),
		shape.Required("PolicyName", nameString()),
		shape.Optional("PolicyId", nameString()),
		shape.Optional("Arn", nameString()),
		shape.Optional("DefaultVersionId", nameString()),
		shape.Optional("AttachmentCount", shape.Number()),
		shape.Optional("IsAttachable", shape.Bool()),
		shape.Optional("CreateDate", shape.Time()),
		shape.Optional("UpdateDate", shape.Time()),
	)
	return writer.Kind[iamtypes.Policy]{
		Name:   "policies",
		Global: true,
		Item:   item,
		Page:   bounded(item, 100000),
		List: func(ctx context.Context, _ string) pager.Cursor[iamtypes.Policy] {
			client := c.IAM(GlobalRegion)
			p := iam.NewListPoliciesPaginator(client, &iam.ListPoliciesInput{}, func(o *iam.ListPoliciesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *iam.ListPoliciesOutput) []iamtypes.Policy {
				return out.Policies
			})
		},
		Identity: writer.Under("Path", "PolicyName"),
	}
}
