// Package playlist loads playlist documents exported by the streaming
// service.
//
// A document looks like:
//
//	{
//	  "results": {
//	    "DATA": {"TITLE": "Late Night", "NB_SONG": 2, "DURATION": 600},
//	    "SONGS": {
//	      "data": [
//	        {"SNG_TITLE": "Chicago", "ART_NAME": "Sufjan Stevens",
//	         "ALB_TITLE": "Illinois", "DURATION": "356", "ISRC": "USAK10500118"}
//	      ],
//	      "total": 1
//	    }
//	  }
//	}
//
// The "results" envelope is optional. Numbers may be written as strings.
package playlist
