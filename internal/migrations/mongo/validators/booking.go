package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"organizer",
			"date",
			"start",
			"end",
			"method",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"organizer": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"title": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"start": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1439,
			},

			"end": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1439,
			},

			"method": bson.M{
				"enum": []string{"office", "remote"},
			},

			"branch": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"room": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"link": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"invitees": bson.M{
				"bsonType": []string{"array", "null"},
				"maxItems": 200,
				"items": bson.M{
					"bsonType":  "string",
					"maxLength": 320,
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "token", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^booking_lock_",
			},
			"token": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
