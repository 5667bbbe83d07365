package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	apigwv2types "github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/writer"
)

func domainsKind(c Clients) writer.Kind[r53types.HostedZone] {
	item := shape.Object(
		shape.Required("Id", nameString()),
		shape.Optional("Name", nameString()),
		shape.Optional("CallerReference", nameString()),
		shape.Optional("Config", shape.Object(
			shape.Optional("Comment", textString()),
			shape.Optional("PrivateZone", shape.Bool()),
		)),
		shape.Optional("ResourceRecordSetCount", shape.Number()),
		shape.Optional("LinkedService", shape.Object(
			shape.Optional("ServicePrincipal", nameString()),
			shape.Optional("Description", textString()),
		)),
	)
	return writer.Kind[r53types.HostedZone]{
		Name:   "domains",
		Global: true,
		Item:   item,
		Page:   bounded(item, 10000),
		List: func(ctx context.Context, _ string) pager.Cursor[r53types.HostedZone] {
			client := c.Route53(GlobalRegion)
			p := route53.NewListHostedZonesPaginator(client, &route53.ListHostedZonesInput{}, func(o *route53.ListHostedZonesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *route53.ListHostedZonesOutput) []r53types.HostedZone {
				return out.HostedZones
			})
		},
		Identity: writer.After("Id", "/hostedzone/"),
	}
}

func certificatesKind(c Clients) writer.Kind[acmtypes.CertificateSummary] {
	item := shape.Object(
		shape.Required("CertificateArn", nameString()),
		shape.Optional("DomainName", nameString()),
		shape.Optional("SubjectAlternativeNameSummaries", nameList()),
		shape.Optional("InUse", shape.Bool()),
		shape.Optional("NotAfter", shape.Time()),
	)
	return writer.Kind[acmtypes.CertificateSummary]{
		Name: "certificates",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[acmtypes.CertificateSummary] {
			client := c.ACM(region)
			p := acm.NewListCertificatesPaginator(client, &acm.ListCertificatesInput{}, func(o *acm.ListCertificatesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *acm.ListCertificatesOutput) []acmtypes.CertificateSummary {
				return out.CertificateSummaryList
			})
		},
		Identity: writer.After("CertificateArn", ":certificate/"),
	}
}

func distributionsKind(c Clients) writer.Kind[cftypes.DistributionSummary] {
	item := shape.Object(
		shape.Required("Id", nameString()),
		shape.Optional("ARN", nameString()),
		shape.Optional("DomainName", nameString()),
		shape.Optional("Status", nameString()),
		shape.Optional("Enabled", shape.Bool()),
		shape.Optional("Comment", textString()),
		shape.Optional("LastModifiedTime", shape.Time()),
		shape.Optional("Aliases", shape.Object(
			shape.Optional("Quantity", shape.Number()),
			shape.Optional("Items", nameList()),
		)),
		shape.Optional("Origins", shape.Object(
			shape.Optional("Quantity", shape.Number()),
			shape.Optional("Items", shape.Array(shape.Object(
				shape.Optional("Id", nameString()),
				shape.Optional("DomainName", nameString()),
				shape.Optional("OriginPath", textString()),
			))),
		)),
	)
	return writer.Kind[cftypes.DistributionSummary]{
		Name:   "distributions",
		Global: true,
		Item:   item,
		Page:   bounded(item, 10000),
		List: func(ctx context.Context, _ string) pager.Cursor[cftypes.DistributionSummary] {
			client := c.CloudFront(GlobalRegion)
			p := cloudfront.NewListDistributionsPaginator(client, &cloudfront.ListDistributionsInput{}, func(o *cloudfront.ListDistributionsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *cloudfront.ListDistributionsOutput) []cftypes.DistributionSummary {
				if out.DistributionList == nil {
					return nil
				}
				return out.DistributionList.Items
			})
		},
		Identity: writer.Field("Id"),
	}
}

func restAPIsKind(c Clients) writer.Kind[apigwtypes.RestApi] {
	item := shape.Object(
		shape.Required("Id", nameString()),
		shape.Optional("Name", nameString()),
		shape.Optional("Description", textString()),
		shape.Optional("CreatedDate", shape.Time()),
		shape.Optional("Version", nameString()),
		shape.Optional("ApiKeySource", textString()),
		shape.Optional("EndpointConfiguration", shape.Object(
			shape.Optional("Types", nameList()),
			shape.Optional("VpcEndpointIds", nameList()),
		)),
		shape.Optional("DisableExecuteApiEndpoint", shape.Bool()),
	)
	return writer.Kind[apigwtypes.RestApi]{
		Name: "apis/rest",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[apigwtypes.RestApi] {
			client := c.APIGateway(region)
			p := apigateway.NewGetRestApisPaginator(client, &apigateway.GetRestApisInput{}, func(o *apigateway.GetRestApisPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *apigateway.GetRestApisOutput) []apigwtypes.RestApi {
				return out.Items
			})
		},
		Identity: writer.Field("Id"),
	}
}

func httpAPIsKind(c Clients) writer.Kind[apigwv2types.Api] {
	item := shape.Object(
		shape.Required("ApiId", nameString()),
		shape.Optional("Name", nameString()),
		shape.Optional("ApiEndpoint", nameString()),
		shape.Optional("ProtocolType", enum("HTTP", "WEBSOCKET")),
		shape.Optional("RouteSelectionExpression", nameString()),
		shape.Optional("CreatedDate", shape.Time()),
		shape.Optional("Description", textString()),
		shape.Optional("DisableExecuteApiEndpoint", shape.Bool()),
	)
	return writer.Kind[apigwv2types.Api]{
		Name: "apis/http",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[apigwv2types.Api] {
			client := c.APIGatewayV2(region)
			return pager.Tokens(func(ctx context.Context, token *string) ([]apigwv2types.Api, *string, error) {
				out, err := client.GetApis(ctx, &apigatewayv2.GetApisInput{NextToken: token})
				if err != nil {
					return nil, nil, err
				}
				return out.Items, out.NextToken, nil
			})
		},
		Identity: writer.Field("ApiId"),
	}
}
