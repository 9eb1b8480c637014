package s3batch_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/batchlabs/s3batch"
	"github.com/batchlabs/s3batch/batchtypes"
)

func Example() {
	client, err := s3batch.New(
		s3batch.WithRegion("us-west-2"),
		s3batch.WithMaxRetries(3),
	)
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.Context(batchtypes.ContextSpec{
		Bucket: "logs",
		Prefix: "2026/08/",
	}).Concurrency(10).Each(context.Background(),
		func(_ context.Context, key string, value any) error {
			fmt.Printf("%s: %d bytes\n", key, len(value.(string)))
			return nil
		})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("processed %d objects\n", result.Processed)
}

func ExampleRequest_Reduce() {
	client, err := s3batch.New()
	if err != nil {
		log.Fatal(err)
	}

	total, err := client.Context(batchtypes.ContextSpec{
		Bucket: "metrics",
		Prefix: "counters/",
	}).Reduce(context.Background(),
		func(_ context.Context, acc any, _ string, value any) (any, error) {
			return acc.(int) + len(value.(string)), nil
		}, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(total)
}

func ExampleRequest_Map() {
	client, err := s3batch.New()
	if err != nil {
		log.Fatal(err)
	}

	// Map refuses to run without Output or InPlace; results land under
	// the target prefix and sources are left untouched.
	_, err = client.Context(batchtypes.ContextSpec{
		Bucket: "docs",
		Prefix: "drafts/",
	}).Output("docs", "published/").
		Map(context.Background(),
			func(_ context.Context, _ string, value any) (any, error) {
				return strings.ToUpper(value.(string)), nil
			})
	if err != nil {
		log.Fatal(err)
	}
}

func ExampleRequest_Filter() {
	client, err := s3batch.New()
	if err != nil {
		log.Fatal(err)
	}

	result, err := client.Context(batchtypes.ContextSpec{
		Bucket: "uploads",
		Prefix: "incoming/",
	}).InPlace().
		Filter(context.Background(),
			func(_ context.Context, _ string, value any) (bool, error) {
				return len(value.(string)) > 0, nil
			})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("kept %d, removed %d\n", len(result.Kept), len(result.Removed))
}
