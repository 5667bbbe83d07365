package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/region"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/writer"
)

func regionsKind(resolver Resolver) writer.Kind[ec2types.Region] {
	return writer.Kind[ec2types.Region]{
		Name:   "regions",
		Global: true,
		Item:   region.Item,
		Page:   region.Collection,
		List: func(ctx context.Context, _ string) pager.Cursor[ec2types.Region] {
			return pager.Single(resolver.List)
		},
		Identity: writer.Field("RegionName"),
	}
}

func vpcsKind(c Clients) writer.Kind[ec2types.Vpc] {
	cidrState := shape.Object(
		shape.Optional("State", enum("associated", "associating", "disassociated", "disassociating", "failed", "failing")),
		shape.Optional("StatusMessage", nameString()),
	)
	item := shape.Object(
		shape.Required("VpcId", shape.String()),
		shape.Optional("CidrBlock", shape.String()),
		shape.Optional("DhcpOptionsId", shape.String()),
		shape.Optional("OwnerId", shape.String()),
		shape.Optional("IsDefault", shape.Bool()),
		shape.Optional("State", enum("available", "pending")),
		shape.Optional("CidrBlockAssociationSet", shape.Array(shape.Object(
			shape.Optional("AssociationId", shape.String()),
			shape.Optional("CidrBlock", shape.String()),
			shape.Optional("CidrBlockState", cidrState),
		))),
		shape.Optional("Tags", tagList("Key", "Value")),
	)
	return writer.Kind[ec2types.Vpc]{
		Name: "vpcs",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[ec2types.Vpc] {
			client := c.EC2(region)
			p := ec2.NewDescribeVpcsPaginator(client, &ec2.DescribeVpcsInput{}, func(o *ec2.DescribeVpcsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *ec2.DescribeVpcsOutput) []ec2types.Vpc {
				return out.Vpcs
			})
		},
		Identity: writer.Field("VpcId"),
	}
}

func instancesKind(c Clients) writer.Kind[ec2types.Reservation] {
	return writer.Kind[ec2types.Reservation]{
		Name: "instances",
		Item: shape.Object(
			shape.Required("ReservationId", shape.String()),
			shape.Optional("OwnerId", shape.String()),
			shape.Optional("Instances", shape.Array(shape.Object(
				shape.Optional("InstanceId", shape.String()),
				shape.Optional("InstanceType", shape.String()),
				shape.Optional("LaunchTime", shape.Time()),
				shape.Optional("Tags", tagList("Key", "Value")),
			))),
		),
		List: func(ctx context.Context, region string) pager.Cursor[ec2types.Reservation] {
			client := c.EC2(region)
			p := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{}, func(o *ec2.DescribeInstancesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *ec2.DescribeInstancesOutput) []ec2types.Reservation {
				return out.Reservations
			})
		},
		Identity: writer.Field("ReservationId"),
	}
}

func functionsKind(c Clients) writer.Kind[lambdatypes.FunctionConfiguration] {
	item := shape.Object(
		shape.Required("FunctionName", nameString()),
		shape.Optional("FunctionArn", nameString()),
		shape.Optional("Role", nameString()),
		shape.Optional("Handler", nameString()),
		shape.Optional("CodeSize", shape.Number()),
		shape.Optional("Description", textString().Max(1000)),
		shape.Optional("Timeout", shape.Number()),
		shape.Optional("MemorySize", shape.Number()),
		shape.Optional("LastModified", nameString()),
		shape.Optional("Version", nameString()),
		shape.Optional("VpcConfig", shape.Object(
			shape.Optional("SubnetIds", nameList()),
			shape.Optional("SecurityGroupIds", nameList()),
		)),
		shape.Optional("Environment", shape.Object(
			shape.Optional("Variables", shape.Object()),
		)),
		shape.Optional("Layers", shape.Array(shape.Object(
			shape.Optional("Arn", nameString()),
			shape.Optional("CodeSize", shape.Number()),
		))),
	)
	return writer.Kind[lambdatypes.FunctionConfiguration]{
		Name: "functions",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[lambdatypes.FunctionConfiguration] {
			client := c.Lambda(region)
			p := lambda.NewListFunctionsPaginator(client, &lambda.ListFunctionsInput{}, func(o *lambda.ListFunctionsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *lambda.ListFunctionsOutput) []lambdatypes.FunctionConfiguration {
				return out.Functions
			})
		},
		Identity: writer.Field("FunctionName"),
	}
}

func classicELBsKind(c Clients) writer.Kind[elbtypes.LoadBalancerDescription] {
	return writer.Kind[elbtypes.LoadBalancerDescription]{
		Name: "elbs/classic",
		Item: shape.Object(
			shape.Required("LoadBalancerName", nameString()),
			shape.Optional("DNSName", nameString()),
			shape.Optional("Scheme", nameString()),
			shape.Optional("VPCId", nameString()),
			shape.Optional("AvailabilityZones", nameList()),
			shape.Optional("Subnets", nameList()),
			shape.Optional("CreatedTime", shape.Time()),
		),
		List: func(ctx context.Context, region string) pager.Cursor[elbtypes.LoadBalancerDescription] {
			client := c.ELB(region)
			p := elasticloadbalancing.NewDescribeLoadBalancersPaginator(client, &elasticloadbalancing.DescribeLoadBalancersInput{}, func(o *elasticloadbalancing.DescribeLoadBalancersPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *elasticloadbalancing.DescribeLoadBalancersOutput) []elbtypes.LoadBalancerDescription {
				return out.LoadBalancerDescriptions
			})
		},
		Identity: writer.Field("LoadBalancerName"),
	}
}

func v2ELBsKind(c Clients) writer.Kind[elbv2types.LoadBalancer] {
	return writer.Kind[elbv2types.LoadBalancer]{
		Name: "elbs/v2",
		Item: shape.Object(
			shape.Required("LoadBalancerName", nameString()),
			shape.Optional("LoadBalancerArn", nameString()),
			shape.Optional("DNSName", nameString()),
			shape.Optional("Type", enum("application", "network", "gateway")),
			shape.Optional("VpcId", nameString()),
			shape.Optional("CreatedTime", shape.Time()),
		),
		List: func(ctx context.Context, region string) pager.Cursor[elbv2types.LoadBalancer] {
			client := c.ELBv2(region)
			p := elasticloadbalancingv2.NewDescribeLoadBalancersPaginator(client, &elasticloadbalancingv2.DescribeLoadBalancersInput{}, func(o *elasticloadbalancingv2.DescribeLoadBalancersPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *elasticloadbalancingv2.DescribeLoadBalancersOutput) []elbv2types.LoadBalancer {
				return out.LoadBalancers
			})
		},
		Identity: writer.Field("LoadBalancerName"),
	}
}
