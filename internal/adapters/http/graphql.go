package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/imoveis/internal/core/usecases"
)

// buildSchema creates the read-only GraphQL schema over the listing service.
// Field names follow the JSON names of the REST API.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	listingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Listing",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.Int},
			"titulo":    &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"azimute":   &graphql.Field{Type: graphql.Float},
			"foto":      &graphql.Field{Type: graphql.String},
		},
	})

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyListing",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.Int},
			"titulo":           &graphql.Field{Type: graphql.String},
			"latitude":         &graphql.Field{Type: graphql.Float},
			"longitude":        &graphql.Field{Type: graphql.Float},
			"distancia_metros": &graphql.Field{Type: graphql.Float},
			"azimute_imovel":   &graphql.Field{Type: graphql.Float},
			"foto":             &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"listings": &graphql.Field{
				Type:        graphql.NewList(listingType),
				Description: "All listings in storage order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Listings.ListAll(p.Context)
				},
			},
			"nearbyListings": &graphql.Field{
				Type:        graphql.NewList(nearbyType),
				Description: "Listings strictly within raio meters of a point",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"raio": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: usecases.DefaultRadiusMeters},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					raio := p.Args["raio"].(float64)
					return deps.Listings.FindNearby(p.Context, lat, lon, raio)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
