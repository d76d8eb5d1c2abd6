package graphql

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

const policyListQuery = `query Policies {
  policies {
    name managed iamArn roles { name }
    permissions { bucket level }
  }
}`

type policyListData struct {
	Policies []struct {
		Name        string `json:"name"`
		Managed     bool   `json:"managed"`
		IAMArn      string `json:"iamArn"`
		Roles       []struct {
			Name string `json:"name"`
		} `json:"roles"`
		Permissions []struct {
			Bucket string `json:"bucket"`
			Level  string `json:"level"`
		} `json:"permissions"`
	} `json:"policies"`
}

func (b *Backend) AdminPolicyList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Policy, error) {
	var data policyListData
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, policyListQuery, nil, &data); err != nil {
		return nil, err
	}
	out := make([]catalog.Policy, len(data.Policies))
	for i, p := range data.Policies {
		perms := make([]catalog.BucketPermission, len(p.Permissions))
		for j, pm := range p.Permissions {
			perms[j] = catalog.BucketPermission{Bucket: pm.Bucket, Level: catalog.PolicyPermission(pm.Level)}
		}
		roles := make([]string, len(p.Roles))
		for j, r := range p.Roles {
			roles[j] = r.Name
		}
		out[i] = catalog.Policy{Name: p.Name, Managed: p.Managed, IAMArn: p.IAMArn, Permissions: perms, Roles: roles}
	}
	return out, nil
}

const policyCreateMutation = `mutation PolicyCreate($name: String!, $managed: Boolean!, $permissions: [PolicyPermissionInput!], $iamArn: String) {
  policyCreate(name: $name, managed: $managed, permissions: $permissions, iamArn: $iamArn) {
    __typename
    ... on PolicyCreateSuccess { policy { name managed iamArn } }
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

type policyCreateResult struct {
	TypeName string `json:"__typename"`
	Message  string `json:"message"`
	Policy   struct {
		Name    string `json:"name"`
		Managed bool   `json:"managed"`
		IAMArn  string `json:"iamArn"`
	} `json:"policy"`
}

func (b *Backend) AdminPolicyCreate(ctx context.Context, rc *catalog.RequestContext, p catalog.Policy) (*catalog.Policy, error) {
	perms := make([]map[string]any, len(p.Permissions))
	for i, pm := range p.Permissions {
		perms[i] = map[string]any{"bucket": pm.Bucket, "level": string(pm.Level)}
	}
	var result struct {
		PolicyCreate policyCreateResult `json:"policyCreate"`
	}
	vars := map[string]any{"name": p.Name, "managed": p.Managed, "permissions": perms, "iamArn": p.IAMArn}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, policyCreateMutation, vars, &result); err != nil {
		return nil, err
	}
	r := result.PolicyCreate
	if r.TypeName != "PolicyCreateSuccess" {
		return nil, apperr.New(resultKind(r.TypeName), r.Message)
	}
	return &catalog.Policy{Name: r.Policy.Name, Managed: r.Policy.Managed, IAMArn: r.Policy.IAMArn, Permissions: p.Permissions}, nil
}

const policyRolesQuery = `query PolicyRoles($name: String!) { policy(name: $name) { roles { name } } }`

type policyRolesData struct {
	Policy struct {
		Roles []struct {
			Name string `json:"name"`
		} `json:"roles"`
	} `json:"policy"`
}

const policyDeleteMutation = `mutation PolicyDelete($name: String!) {
  policyDelete(name: $name) {
    __typename
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

// AdminPolicyDelete checks the policy's roles edge before issuing the
// delete mutation, so a policy still attached to a role fails with IN_USE
// instead of the catalog's own mutation error.
func (b *Backend) AdminPolicyDelete(ctx context.Context, rc *catalog.RequestContext, name string) error {
	var roleData policyRolesData
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, policyRolesQuery, map[string]any{"name": name}, &roleData); err != nil {
		return err
	}
	if len(roleData.Policy.Roles) > 0 {
		return apperr.New(apperr.InUse, "policy is attached to one or more roles").
			WithFixHint("detach the policy from its roles before deleting it")
	}

	var result struct {
		PolicyDelete unionResult `json:"policyDelete"`
	}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, policyDeleteMutation, map[string]any{"name": name}, &result); err != nil {
		return err
	}
	if result.PolicyDelete.TypeName != "" && result.PolicyDelete.TypeName != "Success" {
		return apperr.New(resultKind(result.PolicyDelete.TypeName), result.PolicyDelete.Message)
	}
	return nil
}

const roleListQuery = `query Roles { roles { name managed iamArn policies { name } } }`

type roleListData struct {
	Roles []struct {
		Name     string `json:"name"`
		Managed  bool   `json:"managed"`
		IAMArn   string `json:"iamArn"`
		Policies []struct {
			Name string `json:"name"`
		} `json:"policies"`
	} `json:"roles"`
}

func (b *Backend) AdminRoleList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Role, error) {
	var data roleListData
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, roleListQuery, nil, &data); err != nil {
		return nil, err
	}
	out := make([]catalog.Role, len(data.Roles))
	for i, r := range data.Roles {
		policies := make([]string, len(r.Policies))
		for j, p := range r.Policies {
			policies[j] = p.Name
		}
		out[i] = catalog.Role{Name: r.Name, Managed: r.Managed, IAMArn: r.IAMArn, Policies: policies}
	}
	return out, nil
}

const roleCreateMutation = `mutation RoleCreate($name: String!, $managed: Boolean!, $policies: [String!], $iamArn: String) {
  roleCreate(name: $name, managed: $managed, policies: $policies, iamArn: $iamArn) {
    __typename
    ... on RoleCreateSuccess { role { name managed iamArn } }
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

type roleCreateResult struct {
	TypeName string `json:"__typename"`
	Message  string `json:"message"`
	Role     struct {
		Name    string `json:"name"`
		Managed bool   `json:"managed"`
		IAMArn  string `json:"iamArn"`
	} `json:"role"`
}

func (b *Backend) AdminRoleCreate(ctx context.Context, rc *catalog.RequestContext, r catalog.Role) (*catalog.Role, error) {
	var result struct {
		RoleCreate roleCreateResult `json:"roleCreate"`
	}
	vars := map[string]any{"name": r.Name, "managed": r.Managed, "policies": r.Policies, "iamArn": r.IAMArn}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, roleCreateMutation, vars, &result); err != nil {
		return nil, err
	}
	rr := result.RoleCreate
	if rr.TypeName != "RoleCreateSuccess" {
		return nil, apperr.New(resultKind(rr.TypeName), rr.Message)
	}
	return &catalog.Role{Name: rr.Role.Name, Managed: rr.Role.Managed, IAMArn: rr.Role.IAMArn, Policies: r.Policies}, nil
}
